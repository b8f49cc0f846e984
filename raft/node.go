package raft

import (
	"fmt"
	"net"
	"path/filepath"
	"time"

	"github.com/devadigapratham/printbatch/api/models"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb/v2"
)

const (
	applyTimeout      = 5 * time.Second
	membershipTimeout = 10 * time.Second
)

// Node represents a node in the Raft cluster
type Node struct {
	raft      *raft.Raft
	fsm       *FSM
	transport *raft.NetworkTransport
	stores    []*raftboltdb.BoltStore
	logger    hclog.Logger
}

// Config represents the configuration for a Raft node
type Config struct {
	NodeID    string
	RaftAddr  string
	RaftDir   string
	Bootstrap bool
	Peers     []Peer
	Logger    hclog.Logger
}

// Peer is another voter of the bootstrap configuration.
// ID must be the peer's own NodeID or elections never reach quorum.
type Peer struct {
	ID   string
	Addr string
}

// NewNode creates a new Raft node
func NewNode(config *Config) (*Node, error) {
	logger := config.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	fsm := NewFSM()

	raftConfig := raft.DefaultConfig()
	raftConfig.LocalID = raft.ServerID(config.NodeID)
	raftConfig.SnapshotInterval = 20 * time.Second
	raftConfig.SnapshotThreshold = 1024
	raftConfig.Logger = logger

	// BoltDB store for logs
	logStore, err := raftboltdb.NewBoltStore(filepath.Join(config.RaftDir, "raft-log.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to create BoltDB log store: %w", err)
	}

	// BoltDB store for term and vote
	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(config.RaftDir, "raft-stable.db"))
	if err != nil {
		logStore.Close()
		return nil, fmt.Errorf("failed to create BoltDB stable store: %w", err)
	}
	stores := []*raftboltdb.BoltStore{logStore, stableStore}

	snapshotStore, err := raft.NewFileSnapshotStoreWithLogger(config.RaftDir, 3, logger.Named("snapshot"))
	if err != nil {
		closeStores(stores)
		return nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}

	addr, err := net.ResolveTCPAddr("tcp", config.RaftAddr)
	if err != nil {
		closeStores(stores)
		return nil, fmt.Errorf("failed to resolve TCP address: %w", err)
	}
	transport, err := raft.NewTCPTransportWithLogger(config.RaftAddr, addr, 3, 10*time.Second, logger.Named("transport"))
	if err != nil {
		closeStores(stores)
		return nil, fmt.Errorf("failed to create TCP transport: %w", err)
	}

	r, err := raft.NewRaft(raftConfig, fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		transport.Close()
		closeStores(stores)
		return nil, fmt.Errorf("failed to create Raft instance: %w", err)
	}

	if config.Bootstrap {
		configuration := raft.Configuration{
			Servers: []raft.Server{
				{
					ID:      raft.ServerID(config.NodeID),
					Address: raft.ServerAddress(config.RaftAddr),
				},
			},
		}

		for _, peer := range config.Peers {
			if peer.ID == config.NodeID {
				continue
			}
			configuration.Servers = append(configuration.Servers, raft.Server{
				ID:      raft.ServerID(peer.ID),
				Address: raft.ServerAddress(peer.Addr),
			})
		}

		f := r.BootstrapCluster(configuration)
		if err := f.Error(); err != nil && err != raft.ErrCantBootstrap {
			r.Shutdown().Error()
			transport.Close()
			closeStores(stores)
			return nil, fmt.Errorf("failed to bootstrap cluster: %w", err)
		}
		logger.Info("bootstrapped cluster", "servers", len(configuration.Servers))
	}

	return &Node{
		raft:      r,
		fsm:       fsm,
		transport: transport,
		stores:    stores,
		logger:    logger,
	}, nil
}

// Apply replicates a command through the Raft log.
// Errors returned by the FSM are wrapped so callers can match them with errors.Is.
func (n *Node) Apply(cmd *models.Command) error {
	data, err := cmd.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	future := n.raft.Apply(data, applyTimeout)
	if err := future.Error(); err != nil {
		return fmt.Errorf("failed to apply command to Raft log: %w", err)
	}

	if appErr, ok := future.Response().(error); ok && appErr != nil {
		n.logger.Debug("command rejected", "type", cmd.Type, "error", appErr)
		return fmt.Errorf("command application failed: %w", appErr)
	}

	return nil
}

// GetFSM returns the FSM
func (n *Node) GetFSM() *FSM {
	return n.fsm
}

// Leader returns true if this node is the leader
func (n *Node) Leader() bool {
	return n.raft.State() == raft.Leader
}

// LeaderAddress returns the address of the current leader
func (n *Node) LeaderAddress() string {
	addr, _ := n.raft.LeaderWithID()
	return string(addr)
}

// State returns the current state of the Raft node
func (n *Node) State() raft.RaftState {
	return n.raft.State()
}

// AddVoter adds a server to the cluster as a voter
func (n *Node) AddVoter(nodeID, addr string) error {
	future := n.raft.AddVoter(raft.ServerID(nodeID), raft.ServerAddress(addr), 0, membershipTimeout)
	if err := future.Error(); err != nil {
		return fmt.Errorf("failed to add voter %s: %w", nodeID, err)
	}
	n.logger.Info("added voter", "node_id", nodeID, "addr", addr)
	return nil
}

// RemoveServer removes a server from the cluster
func (n *Node) RemoveServer(nodeID string) error {
	future := n.raft.RemoveServer(raft.ServerID(nodeID), 0, membershipTimeout)
	if err := future.Error(); err != nil {
		return fmt.Errorf("failed to remove server %s: %w", nodeID, err)
	}
	n.logger.Info("removed server", "node_id", nodeID)
	return nil
}

// Shutdown stops the Raft node and closes its stores
func (n *Node) Shutdown() error {
	var err error
	if n.raft != nil {
		err = n.raft.Shutdown().Error()
	}
	if n.transport != nil {
		n.transport.Close()
	}
	closeStores(n.stores)
	return err
}

func closeStores(stores []*raftboltdb.BoltStore) {
	for _, s := range stores {
		s.Close()
	}
}
