package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/bobinette/archivist/cron"
	"github.com/bobinette/archivist/log"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/archivist/bleve"
	"github.com/bobinette/archivist/archivist/bolt"
	"github.com/bobinette/archivist/archivist/endpoints"
	"github.com/bobinette/archivist/archivist/postgres"
	"github.com/bobinette/archivist/archivist/services"
)

type Configuration struct {
	Server struct {
		Addr string `toml:"addr"`
	} `toml:"server"`
	Auth struct {
		KeyPath string `toml:"key"`
	} `toml:"auth"`
	Store struct {
		Driver string `toml:"driver"`
	} `toml:"store"`
	Bolt struct {
		Store string `toml:"store"`
	} `toml:"bolt"`
	Bleve struct {
		Store string `toml:"store"`
	} `toml:"bleve"`
	Postgres postgres.Configuration `toml:"postgres"`
	Features endpoints.Features     `toml:"features"`
	Cron     cron.Configuration     `toml:"cron"`
}

var (
	// flags
	env        string
	configFile string

	// logger
	logger log.Logger

	config Configuration
	key    []byte

	// drivers
	boltDriver     *bolt.Driver
	postgresDriver *postgres.Driver
	documentIndex  *bleve.DocumentIndex

	// stores
	documentStore archivist.DocumentStore
	auditLog      archivist.AuditLog
	principals    archivist.PrincipalRepository
	tasks         archivist.TaskRepository

	// services
	documentService  *services.DocumentService
	lifecycleService *services.LifecycleService
	taskService      *services.TaskService
)

func init() {
	RootCmd.PersistentFlags().StringVar(&env, "env", "dev", "environment")
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "configuration file")
}

var RootCmd = cobra.Command{
	Use:   "archivist",
	Short: "Documents with confidentiality levels, checkouts and versions",
	Long:  "Archivist keeps departmental documents, controls who can see them and who is editing them, and keeps every version.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = log.New(env)

		if configFile == "" {
			configFile = path.Join("configuration", fmt.Sprintf("config.%s.toml", env))
		}

		// Read configuration file
		data, err := ioutil.ReadFile(configFile)
		if err != nil {
			logger.Fatal("could not read configuration file:", err)
		}

		if err := toml.Unmarshal(data, &config); err != nil {
			logger.Fatal("error unmarshalling configuration:", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeStores()
	},
}

// inheritPersistentPreRun makes cmd run the persistent pre run of its parent
// before its own. Cobra only runs the closest one.
func inheritPersistentPreRun(cmd *cobra.Command) {
	ppr := cmd.PersistentPreRun
	cmd.PersistentPreRun = func(c *cobra.Command, args []string) {
		// Run parent persistent pre run
		if cmd.Parent() != nil && cmd.Parent().PersistentPreRun != nil {
			cmd.Parent().PersistentPreRun(c, args)
		}

		// Run command persistent pre run
		if ppr != nil {
			ppr(c, args)
		}
	}
}

// loadKey reads the signing key from its json file: {"k": "..."}.
func loadKey() {
	keyData, err := ioutil.ReadFile(config.Auth.KeyPath)
	if err != nil {
		logger.Fatal("could not open key file:", err)
	}

	var k struct {
		Key string `json:"k"`
	}
	if err := json.Unmarshal(keyData, &k); err != nil {
		logger.Fatal("could not read key file:", err)
	}
	if k.Key == "" {
		logger.Fatal("empty signing key")
	}
	key = []byte(k.Key)
}

// openStores opens bolt, and postgres when it is the document driver.
// Principals and tasks are always kept in bolt.
func openStores() {
	boltDriver = &bolt.Driver{}
	if err := boltDriver.Open(config.Bolt.Store); err != nil {
		logger.Fatal("could not open bolt driver:", err)
	}
	principals = &bolt.PrincipalRepository{Driver: boltDriver}
	tasks = &bolt.TaskRepository{Driver: boltDriver}

	switch config.Store.Driver {
	case "", "bolt":
		documentStore = &bolt.DocumentStore{Driver: boltDriver}
		auditLog = &bolt.AuditLog{Driver: boltDriver}
	case "postgres":
		postgresDriver = &postgres.Driver{}
		if err := postgresDriver.Open(config.Postgres); err != nil {
			logger.Fatal("could not open postgres driver:", err)
		}
		documentStore = &postgres.DocumentStore{Driver: postgresDriver}
		auditLog = &postgres.AuditLog{Driver: postgresDriver}
	default:
		logger.Fatalf("unknown store driver %q, expected bolt or postgres", config.Store.Driver)
	}

	documentIndex = &bleve.DocumentIndex{}
	if err := documentIndex.Open(config.Bleve.Store); err != nil {
		logger.Fatal("could not open document index:", err)
	}

	documentService = services.NewDocumentService(documentStore, documentIndex, auditLog, logger)
	lifecycleService = services.NewLifecycleService(documentStore, principals, documentIndex, auditLog, logger)
	taskService = services.NewTaskService(tasks)
}

func closeStores() {
	if documentIndex != nil {
		if err := documentIndex.Close(); err != nil {
			logger.Errorf("could not close index: %v", err)
		}
	}
	if postgresDriver != nil {
		if err := postgresDriver.Close(); err != nil {
			logger.Errorf("could not close postgres: %v", err)
		}
	}
	if boltDriver != nil {
		if err := boltDriver.Close(); err != nil {
			logger.Errorf("could not close bolt: %v", err)
		}
	}
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Fatal("could not marshal result:", err)
	}
	fmt.Println(string(data))
}
