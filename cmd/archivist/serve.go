package main

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobinette/archivist/cron"
	"github.com/bobinette/archivist/gin"

	archivistHTTP "github.com/bobinette/archivist/archivist/http"
)

func init() {
	inheritPersistentPreRun(&ServeCommand)
	RootCmd.AddCommand(&ServeCommand)
}

var ServeCommand = cobra.Command{
	Use:   "serve",
	Short: "Start the http server",
	Long:  "Start the http server",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadKey()
		openStores()
	},
	Run: func(cmd *cobra.Command, args []string) {
		srv := gin.New(env, logger)

		archivistHTTP.RegisterDocumentEndpoints(srv, documentService, key, principals)
		archivistHTTP.RegisterLifecycleEndpoints(srv, lifecycleService, documentService, key, principals)
		archivistHTTP.RegisterTaskEndpoints(srv, taskService, key, principals)
		archivistHTTP.RegisterFeatureEndpoints(srv, config.Features, key)

		// Maintenance jobs
		jobs := cron.NewService(documentStore, documentService, time.Duration(config.Cron.StaleAfter)*time.Hour, logger)
		c, err := jobs.Start(config.Cron)
		if err != nil {
			logger.Fatal("could not start cron:", err)
		}
		defer c.Stop()

		addr := config.Server.Addr
		if addr == "" {
			addr = ":1705"
		}

		logger.WithField("addr", addr).Print("server started")
		if err := http.ListenAndServe(addr, srv); err != nil {
			logger.Fatal("server stopped:", err)
		}
	},
}
