// cube-debug connects to a Cube Arrow Native endpoint, runs one query and
// dumps the decoded schema and rows. Connection settings come from a YAML
// file so tokens stay out of shell history.
//
// Usage:
//
//	cube-debug [-config cube.yaml] "SELECT 1 AS test"
//
// Config file format:
//
//	host: localhost
//	port: 4445
//	token: SECRET
//	database: analytics
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	cube "github.com/borodark/adbc"
)

type config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Token    string `yaml:"token"`
	Database string `yaml:"database"`
}

func main() {
	configPath := flag.String("config", "cube.yaml", "path to the connection config")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: cube-debug [-config cube.yaml] <sql>")
		os.Exit(2)
	}
	sql := flag.Arg(0)

	raw, err := os.ReadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read config: %v\n", err)
		os.Exit(1)
	}
	var cfg config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse config: %v\n", err)
		os.Exit(1)
	}

	client, err := cube.ConnectAndAuth(context.Background(), cube.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Token:    cfg.Token,
		Database: cfg.Database,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Printf("connected, server version %q, session %s\n",
		client.ServerVersion(), client.SessionID())

	stream, rowsAffected, err := client.Query(sql)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
		os.Exit(1)
	}
	defer stream.Release()

	fmt.Printf("rows affected: %d\n", rowsAffected)
	fmt.Printf("schema: %s\n", stream.Schema())

	batch := 0
	for stream.Next() {
		rec := stream.Record()
		fmt.Printf("-- batch %d: %d rows --\n", batch, rec.NumRows())
		for i, col := range rec.Columns() {
			fmt.Printf("%s: %v\n", rec.ColumnName(i), col)
		}
		batch++
	}
	if err := stream.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "stream failed: %v\n", err)
		os.Exit(1)
	}
}
