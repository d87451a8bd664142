// Command demo runs a single gossip node against a configuration file,
// printing every message it receives until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/nodegossip/gossip"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/node.yml", "Path to the node configuration file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	gossip.UseLogger(logger)

	cfg, err := gossip.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}

	node, err := buildNode(cfg)
	if err != nil {
		logger.Fatal("build node failed", zap.Error(err))
	}

	if err := node.Start(); err != nil {
		logger.Fatal("start node failed", zap.Error(err))
	}

	sub := node.Subscribe()
	go func() {
		for {
			delivery, ok := sub.Receive()
			if !ok {
				return
			}
			fmt.Printf("received %s from path notified=%v\n", delivery.Envelope.ID(), delivery.Envelope.NotifiedSet())
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("stopping node")
	if err := node.Close(); err != nil {
		logger.Error("close node failed", zap.Error(err))
	}
}

func buildNode(cfg gossip.Config) (*gossip.Node[string], error) {
	self, err := cfg.SelfIdentity()
	if err != nil {
		return nil, err
	}

	endpoint, err := gossip.NewUDPEndpoint(self.Port)
	if err != nil {
		return nil, err
	}

	discovery, err := cfg.BuildDiscovery(context.Background())
	if err != nil {
		return nil, err
	}

	codec := gossip.NewJSONCodec[string]()
	return gossip.New[string](self, endpoint, discovery, codec, cfg.MessageTTL())
}
