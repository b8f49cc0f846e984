package raft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Membership is the part of a node the membership handlers need
type Membership interface {
	Leader() bool
	LeaderAddress() string
	AddVoter(nodeID, addr string) error
	RemoveServer(nodeID string) error
}

// Transport serves and sends cluster membership requests over HTTP
type Transport struct {
	node   Membership
	client *http.Client
	logger hclog.Logger
}

// NewTransport creates a new Transport
func NewTransport(node Membership, logger hclog.Logger) *Transport {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Transport{
		node:   node,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type joinRequest struct {
	NodeID   string `json:"node_id"`
	NodeAddr string `json:"node_addr"`
}

type leaveRequest struct {
	NodeID string `json:"node_id"`
}

// JoinCluster asks the node serving HTTP at joinAddr to add this node as a voter.
// joinAddr must be the leader's HTTP address.
func (t *Transport) JoinCluster(ctx context.Context, joinAddr, nodeID, raftAddr string) error {
	return t.post(ctx, joinAddr, "/raft/join", joinRequest{NodeID: nodeID, NodeAddr: raftAddr})
}

// LeaveCluster asks the leader at leaderAddr to remove a node from the cluster
func (t *Transport) LeaveCluster(ctx context.Context, leaderAddr, nodeID string) error {
	return t.post(ctx, leaderAddr, "/raft/leave", leaveRequest{NodeID: nodeID})
}

func (t *Transport) post(ctx context.Context, addr, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s%s returned %d: %s", addr, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// RaftHandler returns an HTTP handler for Raft membership operations
func (t *Transport) RaftHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/join", func(w http.ResponseWriter, r *http.Request) {
		var req joinRequest
		if !t.decode(w, r, &req) {
			return
		}
		if req.NodeID == "" || req.NodeAddr == "" {
			http.Error(w, "node_id and node_addr are required", http.StatusBadRequest)
			return
		}

		if err := t.node.AddVoter(req.NodeID, req.NodeAddr); err != nil {
			t.logger.Error("join failed", "node_id", req.NodeID, "error", err)
			http.Error(w, fmt.Sprintf("Failed to add node: %v", err), http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/leave", func(w http.ResponseWriter, r *http.Request) {
		var req leaveRequest
		if !t.decode(w, r, &req) {
			return
		}
		if req.NodeID == "" {
			http.Error(w, "node_id is required", http.StatusBadRequest)
			return
		}

		if err := t.node.RemoveServer(req.NodeID); err != nil {
			t.logger.Error("leave failed", "node_id", req.NodeID, "error", err)
			http.Error(w, fmt.Sprintf("Failed to remove node: %v", err), http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	})

	return mux
}

// decode checks method and leadership and parses the body. It writes the error response itself.
func (t *Transport) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}

	// Only the leader can change membership
	if !t.node.Leader() {
		http.Error(w, "Not the leader, leader is "+t.node.LeaderAddress(), http.StatusConflict)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode request: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}
