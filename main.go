package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"

	"recipe-box/config"
	"recipe-box/database"
	"recipe-box/logger"
	"recipe-box/web"
	"recipe-box/web/global"
	"recipe-box/web/service"
)

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}

	err := database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}

	var server *web.Server

	server = web.NewServer()
	global.SetWebServer(server)
	err = server.Start()
	if err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			global.SetWebServer(server)
			err = server.Start()
			if err != nil {
				log.Println(err)
				return
			}
		default:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			if err := database.CloseDB(); err != nil {
				logger.Warning("close database err:", err)
			}
			return
		}
	}
}

func resetSetting() {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}
	err = settingService.ResetSettings()
	if err != nil {
		fmt.Println("reset setting failed:", err)
	} else {
		fmt.Println("reset setting success")
	}
}

func showSetting(show bool) {
	if show {
		err := database.InitDB(config.GetDBPath())
		if err != nil {
			fmt.Println(err)
			return
		}

		settingService := service.SettingService{}
		port, err := settingService.GetPort()
		if err != nil {
			fmt.Println("get current port failed, error info:", err)
		}
		basePath, err := settingService.GetBasePath()
		if err != nil {
			fmt.Println("get current base path failed, error info:", err)
		}
		apiURL, err := settingService.GetRecipeApiURL()
		if err != nil {
			fmt.Println("get recipe API url failed, error info:", err)
		}
		apiKey, err := settingService.GetRecipeApiKey()
		if err != nil {
			fmt.Println("get recipe API key failed, error info:", err)
		}

		userService := service.UserService{}
		users, err := userService.UserCount()
		if err != nil {
			fmt.Println("get user count failed, error info:", err)
		}

		fmt.Println("current settings as follows:")
		fmt.Println("port:", port)
		fmt.Println("base path:", basePath)
		fmt.Println("recipe API url:", apiURL)
		if apiKey != "" {
			fmt.Println("recipe API key: configured")
		} else {
			fmt.Println("recipe API key: not set")
		}
		fmt.Println("registered users:", users)
	}
}

func updateSetting(port int, recipeApiURL string, recipeApiKey string) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}

	if port > 0 {
		err := settingService.SetPort(port)
		if err != nil {
			fmt.Println("set port failed:", err)
		} else {
			fmt.Printf("set port %v success\n", port)
		}
	}
	if recipeApiURL != "" {
		if err := settingService.SetRecipeApiURL(recipeApiURL); err != nil {
			fmt.Println("set recipe API url failed:", err)
		} else {
			fmt.Println("set recipe API url success")
		}
	}
	if recipeApiKey != "" {
		if err := settingService.SetRecipeApiKey(recipeApiKey); err != nil {
			fmt.Println("set recipe API key failed:", err)
		} else {
			fmt.Println("set recipe API key success")
		}
	}
}

func migrateDb() {
	fmt.Println("Start migrating database...")
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Migration done!")
}

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	var rootCmd = &cobra.Command{
		Use: "recipe-box",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or migrate the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Set settings",
	}

	var resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Reset all settings",
		Run: func(cmd *cobra.Command, args []string) {
			resetSetting()
		},
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting(true)
		},
	}

	var updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Update settings",
		Run: func(cmd *cobra.Command, args []string) {
			port, _ := cmd.Flags().GetInt("port")
			recipeApiURL, _ := cmd.Flags().GetString("recipe-api-url")
			recipeApiKey, _ := cmd.Flags().GetString("recipe-api-key")
			updateSetting(port, recipeApiURL, recipeApiKey)
		},
	}

	updateCmd.Flags().Int("port", 0, "set web server port")
	updateCmd.Flags().String("recipe-api-url", "", "set recipe API base url")
	updateCmd.Flags().String("recipe-api-key", "", "set recipe API key")

	settingCmd.AddCommand(resetCmd, showCmd, updateCmd)

	rootCmd.AddCommand(runCmd, migrateCmd, settingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
