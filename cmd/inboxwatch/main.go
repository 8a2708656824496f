// Command inboxwatch follows one user's inbox from the terminal by polling the messaging API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/berlincodez/Campus-Skill-link/internal/configuration"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"github.com/berlincodez/Campus-Skill-link/internal/poller"
	"go.uber.org/zap"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "base URL of the messaging API")
	userID := flag.String("user", "", "id of the signed-in user")
	socket := flag.Bool("socket", true, "subscribe to websocket nudges for the open thread")
	dev := flag.Bool("dev", false, "development logging")
	flag.Parse()

	logger, err := configuration.NewLogger(configuration.LogConfig{Development: *dev})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	session, err := poller.NewSession(*userID)
	if err != nil {
		logger.Fatal("cannot start session", zap.Error(err))
	}

	source := poller.NewHTTPSource(*server, nil)

	opts := poller.Options{
		Logger:   logger,
		OnUpdate: render,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	cfg, err := source.ClientConfig(ctx)
	cancel()
	if err != nil {
		logger.Warn("client config unavailable, using defaults", zap.Error(err))
	} else {
		opts.InboxInterval = time.Duration(cfg.InboxIntervalMs) * time.Millisecond
		opts.ThreadInterval = time.Duration(cfg.ThreadIntervalMs) * time.Millisecond
		if *socket {
			opts.SocketURL = socketURL(*server, cfg)
		}
	}

	loop := poller.NewLoop(session, source, opts)
	if err := loop.Start(); err != nil {
		logger.Warn("initial inbox load failed", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	session.Logout()
	loop.Stop()
}

func socketURL(server string, cfg *poller.ClientConfig) string {
	u, err := url.Parse(server)
	if err != nil || cfg.SocketPort == 0 {
		return ""
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	host := net.JoinHostPort(u.Hostname(), strconv.Itoa(cfg.SocketPort))
	return (&url.URL{Scheme: scheme, Host: host, Path: "/" + cfg.SocketRoute}).String()
}

func render(inbox *poller.Inbox) {
	active, _ := inbox.Active()
	fmt.Printf("\n--- inbox (%d unread) ---\n", inbox.TotalUnread())
	for _, c := range inbox.Conversations() {
		marker := " "
		if c.ConnectionID == active {
			marker = ">"
		}
		fmt.Printf("%s %-24s %-28s unread=%d\n", marker, c.ConnectionID, title(c.Group, c.OtherUser), c.UnreadCount)
	}
	for _, m := range inbox.Messages() {
		fmt.Printf("    [%s] %s: %s\n", m.CreatedAt.Local().Format("15:04"), m.SenderID, m.Text)
	}
}

func title(group *model.GroupSummary, other *model.PublicProfile) string {
	switch {
	case group != nil:
		return group.Name
	case other != nil:
		return other.Name
	default:
		return "(unknown)"
	}
}
