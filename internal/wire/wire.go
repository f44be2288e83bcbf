//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"agromarket/internal/catalog"
	chathandler "agromarket/internal/chat/handler"
	chatrepo "agromarket/internal/chat/repository"
	"agromarket/internal/config"
	"agromarket/internal/dbmongo"
	"agromarket/internal/dbmysql"
	"agromarket/internal/favorite"
	"agromarket/internal/notif"
	"agromarket/internal/realtime"
	"agromarket/internal/user"
)

func InitializeApplication() (*Application, error) {
	wire.Build(
		config.Load,
		dbmysql.NewMySQL,
		dbmongo.NewMongoConnection,
		dbmongo.NewAttachmentStorage,
		realtime.NewRedisClient,
		realtime.NewHub,
		ProvideRealtimePublisher,
		ProvidePushSender,
		dbmysql.NewNotificationRepository,
		user.NewUserRepository,
		user.NewDeviceRepository,
		ProvideNotificationService,
		chatrepo.NewChatRepository,
		ProvideChatService,
		chathandler.NewChatHandler,
		chathandler.NewAttachmentHandler,
		notif.NewNotificationHandler,
		catalog.NewProductRepository,
		catalog.NewProductService,
		catalog.NewProductHandler,
		favorite.NewFavoriteRepository,
		ProvideFavoriteService,
		favorite.NewFavoriteHandler,
		ProvideUserService,
		user.NewUserHandler,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}
