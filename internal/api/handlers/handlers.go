package handlers

import (
	"github.com/motorides/dispatch/internal/domain/user"
	"github.com/motorides/dispatch/internal/service/chat"
	"github.com/motorides/dispatch/internal/service/dispatch"
	"github.com/motorides/dispatch/pkg/logger"
	"github.com/motorides/dispatch/pkg/monitoring"
	"github.com/motorides/dispatch/pkg/token"
	"github.com/motorides/dispatch/pkg/websocket"
)

// AdminAccount is the environment-configured master account.
type AdminAccount struct {
	ID       string
	Email    string
	Password string
}

// Handlers holds all handler dependencies
type Handlers struct {
	Dispatch  *dispatch.Service
	Chat      *chat.Service
	Directory user.Directory
	Tokens    *token.Manager
	Hub       *websocket.Hub
	Monitor   *monitoring.NewRelicApp
	Logger    *logger.Logger
	Admin     AdminAccount
}

// NewHandlers creates a new Handlers instance
func NewHandlers(dispatchSvc *dispatch.Service, chatSvc *chat.Service, directory user.Directory,
	tokens *token.Manager, hub *websocket.Hub, monitor *monitoring.NewRelicApp,
	log *logger.Logger, admin AdminAccount) *Handlers {
	return &Handlers{
		Dispatch:  dispatchSvc,
		Chat:      chatSvc,
		Directory: directory,
		Tokens:    tokens,
		Hub:       hub,
		Monitor:   monitor,
		Logger:    log,
		Admin:     admin,
	}
}
