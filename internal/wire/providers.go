package wire

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"agromarket/internal/catalog"
	chathandler "agromarket/internal/chat/handler"
	chatrepo "agromarket/internal/chat/repository"
	chatservice "agromarket/internal/chat/service"
	"agromarket/internal/common"
	"agromarket/internal/config"
	"agromarket/internal/dbmongo"
	"agromarket/internal/dbmysql"
	"agromarket/internal/favorite"
	"agromarket/internal/notif"
	"agromarket/internal/realtime"
	"agromarket/internal/user"
)

// Application bundles everything main needs to serve and shut down.
type Application struct {
	Config              *config.Config
	DB                  *gorm.DB
	Mongo               *dbmongo.MongoClient
	Redis               *redis.Client
	Hub                 *realtime.Hub
	UserHandler         *user.UserHandler
	ChatHandler         *chathandler.ChatHandler
	AttachmentHandler   *chathandler.AttachmentHandler
	NotificationHandler *notif.NotificationHandler
	FavoriteHandler     *favorite.FavoriteHandler
	ProductHandler      *catalog.ProductHandler
	NotificationService *notif.NotificationService
}

func ProvideRealtimePublisher(rdb *redis.Client) *realtime.Publisher {
	return realtime.NewPublisher(rdb)
}

// ProvidePushSender returns the log-only sender. A provider-backed
// implementation slots in here without touching the pipeline.
func ProvidePushSender() common.PushSender {
	return notif.LogPushSender{}
}

func ProvideNotificationService(
	cfg *config.Config,
	repo dbmysql.NotificationRepository,
	deviceRepo user.DeviceRepository,
	pushSender common.PushSender,
	publisher *realtime.Publisher,
) *notif.NotificationService {
	return notif.NewNotificationService(cfg, repo, deviceRepo, pushSender, publisher)
}

func ProvideChatService(
	repo chatrepo.ChatRepository,
	notifications *notif.NotificationService,
	publisher *realtime.Publisher,
) chatservice.ChatService {
	return chatservice.NewChatService(repo, notifications, publisher)
}

func ProvideFavoriteService(
	repo favorite.FavoriteRepository,
	products catalog.ProductRepository,
	notifications *notif.NotificationService,
) favorite.FavoriteService {
	return favorite.NewFavoriteService(repo, products, notifications)
}

// ProvideUserService registers the per-feature cleanup steps that run when
// an account is deleted.
func ProvideUserService(
	repo user.UserRepository,
	devices user.DeviceRepository,
	chat chatservice.ChatService,
	favorites favorite.FavoriteService,
	products catalog.ProductService,
	notifications *notif.NotificationService,
) user.UserService {
	cleaners := []user.AccountCleaner{
		user.AccountCleanerFunc(func(ctx context.Context, userID string) error {
			return chat.RemoveUserFromAllConversations(ctx, userID)
		}),
		user.AccountCleanerFunc(func(ctx context.Context, userID string) error {
			return favorites.RemoveAllForUser(ctx, userID)
		}),
		user.AccountCleanerFunc(func(ctx context.Context, userID string) error {
			return products.RemoveAllForAuthor(ctx, userID)
		}),
		user.AccountCleanerFunc(func(ctx context.Context, userID string) error {
			return notifications.RemoveAllForUser(ctx, userID)
		}),
	}
	return user.NewUserService(repo, devices, cleaners...)
}
