package service

import (
	"github.com/mkhalin/family-expenses/internal/adapter"
	"github.com/mkhalin/family-expenses/internal/config"
	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/internal/store"
)

type ClientServices struct {
	DataService ClientDataService
	SyncService ClientSyncService
	SyncJob     ClientSyncJob
}

func NewClientServices(localStore *store.LocalStorage, serverAdapter adapter.ServerAdapter, cfg config.ClientSync, logger *logger.Logger) *ClientServices {
	syncSvc := NewClientSyncService(localStore, serverAdapter, logger)

	return &ClientServices{
		DataService: NewClientDataService(localStore, logger),
		SyncService: syncSvc,
		SyncJob:     NewClientSyncJob(syncSvc, serverAdapter, cfg, logger),
	}
}
