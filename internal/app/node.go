package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/thingsgate/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/thingsgate/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/thingsgate/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/thingsgate/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
	// RemotesNodeID is the unique identifier for the remote factory Graft node.
	RemotesNodeID graft.ID = "app.remotes"
)

func init() {
	graft.Register(graft.Node[ports.RemoteFactory]{
		ID:        RemotesNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RemoteFactory, error) {
			return NewRemotes(), nil
		},
	})

	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			RemotesNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	remotes, err := graft.Dep[ports.RemoteFactory](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, log, tracer, remotes), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:    app,
		Logger: log,
	}, nil
}
