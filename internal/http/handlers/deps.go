package handlers

import (
	"zando/internal/catalog"
	"zando/internal/config"
	"zando/internal/events"
	"zando/internal/repos"
	"zando/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler         *AuthHandler
	CategoryHandler     *CategoryHandler
	ProductHandler      *ProductHandler
	InventoryHandler    *InventoryHandler
	SearchHandler       *SearchHandler
	CartHandler         *CartHandler
	OrderHandler        *OrderHandler
	WishlistHandler     *WishlistHandler
	NotificationHandler *NotificationHandler
	ProfileHandler      *ProfileHandler
	AdminHandler        *AdminHandler
}

func NewDeps(api services.Backend, users *repos.UserRepo, cfg config.Config, cache catalog.Cache, pub events.Publisher) *Deps {
	registry := services.NewRegistry(api, pub, cfg.DeliveryFee)
	authSvc := services.NewAuthService(api, users, registry, cfg.SessionTTL)
	catalogSvc := services.NewCatalogService(api, cache, cfg.CatalogTTL)
	accountSvc := services.NewAccountService(api)

	return &Deps{
		Auth:                authSvc,
		AuthHandler:         &AuthHandler{Auth: authSvc},
		CategoryHandler:     &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:      &ProductHandler{Catalog: catalogSvc},
		InventoryHandler:    &InventoryHandler{Catalog: catalogSvc},
		SearchHandler:       &SearchHandler{Catalog: catalogSvc},
		CartHandler:         &CartHandler{Catalog: catalogSvc, Fee: cfg.DeliveryFee},
		OrderHandler:        &OrderHandler{Catalog: catalogSvc, Accounts: accountSvc, StaticDir: cfg.StaticDir},
		WishlistHandler:     &WishlistHandler{Catalog: catalogSvc},
		NotificationHandler: &NotificationHandler{},
		ProfileHandler:      &ProfileHandler{Accounts: accountSvc},
		AdminHandler:        &AdminHandler{Catalog: catalogSvc, Accounts: accountSvc},
	}
}
