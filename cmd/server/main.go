package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/yashagw/craneopt/internal/config"
	"github.com/yashagw/craneopt/internal/metadata"
	"github.com/yashagw/craneopt/internal/optimizer"
	"github.com/yashagw/craneopt/internal/planner"
)

type Server struct {
	metadataManager *metadata.Manager
	planner         *planner.Planner
}

type AttributeInfo struct {
	Name     string `json:"name"`
	Distinct int    `json:"distinct"`
}

type RelationInfo struct {
	Name       string          `json:"name"`
	Tuples     int             `json:"tuples"`
	Attributes []AttributeInfo `json:"attributes"`
}

type QueryResponse struct {
	Type          string         `json:"type"`
	Original      string         `json:"original,omitempty"`
	Optimized     string         `json:"optimized,omitempty"`
	OriginalCost  int            `json:"original_cost"`
	OptimizedCost int            `json:"optimized_cost"`
	Steps         int            `json:"steps,omitempty"`
	Columns       []string       `json:"columns,omitempty"`
	Relations     []RelationInfo `json:"relations,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// NewServer builds the catalogue from the configured sources and a planner
// over it.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	md := metadata.NewManager()
	if cfg.Catalog.Path != "" {
		if err := md.LoadFile(cfg.Catalog.Path); err != nil {
			return nil, errors.Wrap(err, "failed to load catalogue")
		}
	}
	if cfg.Catalog.SQLite != "" {
		if err := md.AnalyzeSQLite(ctx, cfg.Catalog.SQLite); err != nil {
			return nil, errors.Wrap(err, "failed to analyse database")
		}
	}
	return newServer(md, cfg)
}

func newServer(md *metadata.Manager, cfg *config.Config) (*Server, error) {
	policy, err := cfg.JoinDistinctPolicy()
	if err != nil {
		return nil, err
	}
	opt := optimizer.New(md,
		optimizer.WithJoinDistinctPolicy(policy),
		optimizer.WithVerbose(cfg.Optimizer.Verbose),
	)
	return &Server{
		metadataManager: md,
		planner:         planner.NewPlanner(planner.NewBasicQueryPlanner(md), opt),
	}, nil
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	session := uuid.New().String()
	log.Printf("[SERVER] session %s: connected from %s", session, conn.RemoteAddr())
	defer log.Printf("[SERVER] session %s: closed", session)

	scanner := bufio.NewScanner(conn)
	writer := bufio.NewWriter(conn)

	for {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && err != io.EOF {
				log.Printf("[SERVER] session %s: error reading from client: %v", session, err)
			}
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}

		upper := strings.ToUpper(query)
		if upper == "QUIT" || upper == "EXIT" {
			writer.WriteString("Goodbye!\n")
			writer.Flush()
			break
		}

		response := s.executeQuery(query)
		if response.Error != "" {
			log.Printf("[SERVER] session %s: %q failed: %s", session, query, response.Error)
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			errorResp := QueryResponse{
				Type:  "error",
				Error: fmt.Sprintf("Failed to serialize response: %v", err),
			}
			jsonData, _ = json.Marshal(errorResp)
		}

		writer.Write(jsonData)
		writer.WriteString("\n")
		if err := writer.Flush(); err != nil {
			log.Printf("[SERVER] session %s: error writing to client: %v", session, err)
			break
		}
	}
}

func (s *Server) executeQuery(sql string) QueryResponse {
	if sql == `\d` {
		return QueryResponse{
			Type:      "catalog",
			Relations: s.relations(),
		}
	}

	e, err := s.planner.Optimize(sql)
	if err != nil {
		return QueryResponse{
			Type:  "error",
			Error: err.Error(),
		}
	}
	return QueryResponse{
		Type:          "plan",
		Original:      e.OriginalText(),
		Optimized:     e.OptimizedText(),
		OriginalCost:  e.OriginalCost,
		OptimizedCost: e.OptimizedCost,
		Steps:         e.Steps,
		Columns:       e.Columns(),
	}
}

func (s *Server) relations() []RelationInfo {
	stats := s.metadataManager.Relations()
	infos := make([]RelationInfo, len(stats))
	for i, si := range stats {
		rel := si.Relation()
		info := RelationInfo{
			Name:       si.TableName(),
			Tuples:     si.RecordsOutput(),
			Attributes: make([]AttributeInfo, 0, len(rel.Attributes())),
		}
		for _, attr := range rel.Attributes() {
			info.Attributes = append(info.Attributes, AttributeInfo{Name: attr.Name(), Distinct: attr.DistinctValues()})
		}
		infos[i] = info
	}
	return infos
}

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	dumpCatalog := flag.Bool("dump-catalog", false, "print the catalogue as a statistics file and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	server, err := NewServer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if *dumpCatalog {
		if err := server.metadataManager.Dump(os.Stdout); err != nil {
			log.Fatalf("Failed to dump catalogue: %v", err)
		}
		return
	}

	listener, err := net.Listen("tcp", ":"+cfg.Server.Port)
	if err != nil {
		log.Fatalf("Failed to listen on port %s: %v", cfg.Server.Port, err)
	}

	log.Printf("[SERVER] craneopt listening on port %s", cfg.Server.Port)
	log.Printf("[SERVER] %d relation(s) in catalogue, join distinct policy %s",
		len(server.metadataManager.Relations()), cfg.Optimizer.JoinDistinctPolicy)

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("[SERVER] Error accepting connection: %v", err)
			continue
		}

		go server.handleConnection(conn)
	}
}
