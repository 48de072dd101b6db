package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"miniblog/config"
	"miniblog/database"
	"miniblog/logger"
	"miniblog/web"
	"miniblog/web/service"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

func initLogging() {
	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Notice:
		logger.InitLogger(logging.NOTICE)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())
	initLogging()

	db, err := database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}

	server := web.NewServer(db)
	if err := server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals; SIGHUP restarts the server in place.
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer(db)
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			_ = server.Stop()
			if err := database.CloseDB(db); err != nil {
				logger.Warning("close db err:", err)
			}
			logger.CloseLogger()
			return
		}
	}
}

func showSetting() {
	db, err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB(db)

	userService := service.NewUserService(db)
	articleService := service.NewArticleService(db)
	messageService := service.NewMessageService(db)

	users, err := userService.CountUsers()
	if err != nil {
		fmt.Println("count users failed:", err)
	}
	articles, err := articleService.CountArticles()
	if err != nil {
		fmt.Println("count articles failed:", err)
	}
	messages, err := messageService.CountMessages()
	if err != nil {
		fmt.Println("count messages failed:", err)
	}

	fmt.Println("current settings as follows:")
	fmt.Println("db path:", config.GetDBPath())
	fmt.Println("listen:", config.GetListen())
	fmt.Println("port:", config.GetPort())
	fmt.Println("users:", users)
	fmt.Println("articles:", articles)
	fmt.Println("messages:", messages)
}

func deleteUser(username string) {
	db, err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB(db)

	userService := service.NewUserService(db)
	user, err := userService.GetByUsername(username)
	if err != nil {
		fmt.Printf("user %q not found\n", username)
		return
	}

	if err := userService.DeleteUser(user.Id); err != nil {
		fmt.Println("delete user failed:", err)
		return
	}
	fmt.Printf("deleted user %q and their articles\n", username)
}

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "miniblog",
		Short: "A small multi-user blog",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	settingCmd := &cobra.Command{
		Use:   "setting",
		Short: "Show current settings and database counters",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative operations",
	}
	deleteUserCmd := &cobra.Command{
		Use:   "delete-user <username>",
		Short: "Delete an account and all of its articles",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			initLogging()
			deleteUser(args[0])
		},
	}
	adminCmd.AddCommand(deleteUserCmd)

	rootCmd.AddCommand(runCmd, settingCmd, adminCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
