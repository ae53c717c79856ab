package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
)

const (
	DefaultHost = "localhost"
	DefaultPort = "8080"
)

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

type Client struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
}

func NewClient(host, port string) (*Client, error) {
	address := net.JoinHostPort(host, port)
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to server")
	}
	return newClient(conn), nil
}

func newClient(conn net.Conn) *Client {
	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) ExecuteQuery(query string) (*QueryResponse, error) {
	if _, err := c.writer.WriteString(query + "\n"); err != nil {
		return nil, errors.Wrap(err, "failed to send query")
	}
	if err := c.writer.Flush(); err != nil {
		return nil, errors.Wrap(err, "failed to flush query")
	}

	responseLine, err := c.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("server closed connection")
		}
		return nil, errors.Wrap(err, "failed to read response")
	}

	var response QueryResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(responseLine)), &response); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}
	return &response, nil
}

func printResponse(w io.Writer, response *QueryResponse) {
	if response.Error != "" {
		fmt.Fprintf(w, "❌ Error: %s\n\n", response.Error)
		return
	}

	switch response.Type {
	case "plan":
		fmt.Fprintf(w, "Original plan (cost %d):\n%s\n", response.OriginalCost, response.Original)
		fmt.Fprintf(w, "Optimized plan (cost %d, %d join step(s)):\n%s\n", response.OptimizedCost, response.Steps, response.Optimized)
		if response.OriginalCost > 0 {
			saved := 100 * float64(response.OriginalCost-response.OptimizedCost) / float64(response.OriginalCost)
			fmt.Fprintf(w, "Estimated saving: %.1f%%\n", saved)
		}
		fmt.Fprintf(w, "Columns: %s\n\n", strings.Join(response.Columns, ", "))
	case "catalog":
		if len(response.Relations) == 0 {
			fmt.Fprintln(w, "(no relations)")
			fmt.Fprintln(w)
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "relation\ttuples\tattributes")
		fmt.Fprintln(tw, "-\t-\t-")
		for _, rel := range response.Relations {
			attrs := make([]string, len(rel.Attributes))
			for i, attr := range rel.Attributes {
				attrs[i] = fmt.Sprintf("%s(%d)", attr.Name, attr.Distinct)
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", rel.Name, rel.Tuples, strings.Join(attrs, ", "))
		}
		tw.Flush()
		fmt.Fprintf(w, "\n(%d relation(s))\n\n", len(response.Relations))
	}
}

// processQuery sends a query and prints the reply.
// Returns true if the client should exit (QUIT/EXIT command).
func processQuery(query string, client *Client) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return false
	}

	if isQuit(query) {
		fmt.Println("Goodbye!")
		return true
	}

	response, err := client.ExecuteQuery(query)
	if err != nil {
		fmt.Printf("❌ Error: %v\n\n", err)
		return false
	}

	printResponse(os.Stdout, response)
	return false
}

func main() {
	host := os.Getenv("CRANEOPT_HOST")
	if host == "" {
		host = DefaultHost
	}

	port := os.Getenv("CRANEOPT_PORT")
	if port == "" {
		port = DefaultPort
	}

	client, err := NewClient(host, port)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to server: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Println("craneopt client")
	fmt.Printf("Connected to %s:%s\n", host, port)
	fmt.Println(`Enter queries terminated by ';', '\d' to list relations, 'QUIT' or 'EXIT' to exit`)
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	var queryBuilder strings.Builder

	for {
		if queryBuilder.Len() == 0 {
			fmt.Print("craneopt> ")
		} else {
			fmt.Print("       -> ")
		}

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Meta commands and QUIT/EXIT need no terminator
		if queryBuilder.Len() == 0 && (strings.HasPrefix(line, `\`) || isQuit(line)) {
			if processQuery(line, client) {
				break
			}
			continue
		}

		if strings.HasSuffix(line, ";") {
			queryBuilder.WriteString(" " + strings.TrimSuffix(line, ";"))
			query := queryBuilder.String()
			queryBuilder.Reset()
			if processQuery(query, client) {
				break
			}
		} else {
			if queryBuilder.Len() > 0 {
				queryBuilder.WriteString(" ")
			}
			queryBuilder.WriteString(line)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
	}
}

func isQuit(line string) bool {
	upper := strings.ToUpper(strings.TrimSuffix(line, ";"))
	return upper == "QUIT" || upper == "EXIT"
}
