package raft

import (
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/devadigapratham/printbatch/api/models"
	"github.com/devadigapratham/printbatch/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func waitLeader(t *testing.T, node *Node) {
	t.Helper()
	require.Eventually(t, node.Leader, 10*time.Second, 50*time.Millisecond, "no leader elected")
}

func TestNode_SingleNode(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{NodeID: "node1", RaftAddr: freeAddr(t), RaftDir: dir, Bootstrap: true}

	node, err := NewNode(cfg)
	require.NoError(t, err)
	waitLeader(t, node)
	assert.Equal(t, cfg.RaftAddr, node.LeaderAddress())

	err = node.Apply(&models.Command{
		Type:     models.AddPrintJob,
		PrintJob: &models.PrintJob{ID: "M1", PrinterID: "missing", Volume: 1},
	})
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	err = node.Apply(&models.Command{
		Type:    models.AddPrinter,
		Printer: &models.Printer{ID: "p1", MaxVolume: 300, MaxItems: 0},
	})
	assert.True(t, errors.Is(err, scheduler.ErrInvalidConstraints), "got %v", err)

	require.NoError(t, node.Apply(&models.Command{
		Type:    models.AddPrinter,
		Printer: &models.Printer{ID: "p1", MaxVolume: 300, MaxItems: 2},
	}))
	require.NoError(t, node.Apply(&models.Command{
		Type:     models.AddPrintJob,
		PrintJob: &models.PrintJob{ID: "M1", PrinterID: "p1", Volume: 100, Priority: 1, PrintTime: 120},
	}))
	require.NoError(t, node.Shutdown())

	// bootstrapping again over existing state is a no-op
	reopened, err := NewNode(cfg)
	require.NoError(t, err)
	defer reopened.Shutdown()
	waitLeader(t, reopened)

	require.Eventually(t, func() bool {
		_, ok := reopened.GetFSM().GetPrintJob("M1")
		return ok
	}, 10*time.Second, 50*time.Millisecond)
	printer, ok := reopened.GetFSM().GetPrinter("p1")
	require.True(t, ok)
	assert.Equal(t, 2, printer.MaxItems)
	assert.Equal(t, []scheduler.Job{{ID: "M1", Volume: 100, Priority: 1, Duration: 120}}, reopened.GetFSM().QueuedJobs("p1"))
}

func TestNode_BootstrapWithPeers(t *testing.T) {
	ids := []string{"node1", "node2", "node3"}
	peers := make([]Peer, len(ids))
	for i, id := range ids {
		peers[i] = Peer{ID: id, Addr: freeAddr(t)}
	}

	nodes := make([]*Node, 0, len(ids))
	defer func() {
		for _, n := range nodes {
			n.Shutdown()
		}
	}()
	for _, p := range peers {
		node, err := NewNode(&Config{
			NodeID:    p.ID,
			RaftAddr:  p.Addr,
			RaftDir:   t.TempDir(),
			Bootstrap: true,
			Peers:     peers,
		})
		require.NoError(t, err)
		nodes = append(nodes, node)
	}

	var leader *Node
	require.Eventually(t, func() bool {
		leader = nil
		for _, n := range nodes {
			if n.Leader() {
				if leader != nil {
					return false
				}
				leader = n
			}
		}
		return leader != nil
	}, 15*time.Second, 100*time.Millisecond, "peers never elected a leader")

	require.NoError(t, leader.Apply(&models.Command{
		Type:    models.AddPrinter,
		Printer: &models.Printer{ID: "p1", MaxVolume: 300, MaxItems: 2},
	}))
	for _, n := range nodes {
		require.Eventually(t, func() bool {
			_, ok := n.GetFSM().GetPrinter("p1")
			return ok
		}, 10*time.Second, 50*time.Millisecond)
	}
}

func TestNode_BootstrapFailureReleasesResources(t *testing.T) {
	dir := t.TempDir()
	addr := freeAddr(t)

	// two servers on one address is an invalid configuration
	_, err := NewNode(&Config{
		NodeID:    "node1",
		RaftAddr:  addr,
		RaftDir:   dir,
		Bootstrap: true,
		Peers:     []Peer{{ID: "node2", Addr: addr}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to bootstrap cluster")

	// the stores and the listener are free again
	node, err := NewNode(&Config{NodeID: "node1", RaftAddr: addr, RaftDir: dir, Bootstrap: true})
	require.NoError(t, err)
	defer node.Shutdown()
	waitLeader(t, node)
	assert.FileExists(t, filepath.Join(dir, "raft-log.db"))
}
