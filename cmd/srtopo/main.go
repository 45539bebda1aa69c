package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/srlabs/srtopo/pkg/collector"
	"github.com/srlabs/srtopo/pkg/config"
	"github.com/srlabs/srtopo/pkg/graphstore"
	"github.com/srlabs/srtopo/pkg/logger"
	"github.com/srlabs/srtopo/pkg/metrics"
	"github.com/srlabs/srtopo/pkg/server"
	"github.com/srlabs/srtopo/pkg/topology"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
)

const (
	defaultListenAddr     = "0.0.0.0:3010"
	defaultMetricsAddr    = "0.0.0.0:0"
	defaultMaxConcurrency = 8
	defaultCollectTimeout = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	metricsAddrFlag := flag.String("metrics-addr", defaultMetricsAddr, "Address to listen on for prometheus metrics")

	// Collection configuration
	configFlag := flag.String("config", "", "Path to the node inventory YAML (optional with snapshot sources)")
	snapshotFlag := flag.String("snapshot", "", "Path to a local domain snapshot JSON file")
	s3BucketFlag := flag.String("s3-bucket", collector.DefaultBucket, "S3 bucket for domain snapshots (or set SRTOPO_S3_BUCKET env var)")
	s3RegionFlag := flag.String("s3-region", collector.DefaultRegion, "AWS region for the snapshot bucket (or set SRTOPO_S3_REGION env var)")
	s3EndpointURLFlag := flag.String("s3-endpoint-url", "", "Custom S3 endpoint URL (for testing with MinIO)")
	maxConcurrencyFlag := flag.Int("max-concurrency", defaultMaxConcurrency, "maximum number of concurrent node fetches")
	collectTimeoutFlag := flag.Duration("collect-timeout", defaultCollectTimeout, "per-node fetch timeout")
	allowPartialFlag := flag.Bool("allow-partial", false, "drop unreachable nodes and unresolvable adjacencies instead of aborting")

	// Query configuration
	adjMatrixFlag := flag.Bool("adjmatrix", false, "print the adjacency matrix")
	srcFlag := flag.String("src", "", "shortest path source hostname")
	dstFlag := flag.String("dst", "", "shortest path destination hostname")

	// Server configuration
	serveFlag := flag.Bool("serve", false, "serve the topology over HTTP")
	listenAddrFlag := flag.String("listen-addr", defaultListenAddr, "HTTP server listen address")

	// Neo4j configuration (optional)
	neo4jURIFlag := flag.String("neo4j-uri", "", "Neo4j server URI (e.g., bolt://localhost:7687, or set NEO4J_URI env var)")
	neo4jDatabaseFlag := flag.String("neo4j-database", graphstore.DefaultDatabase, "Neo4j database name (or set NEO4J_DATABASE env var)")
	neo4jUsernameFlag := flag.String("neo4j-username", "neo4j", "Neo4j username (or set NEO4J_USERNAME env var)")
	neo4jPasswordFlag := flag.String("neo4j-password", "", "Neo4j password (or set NEO4J_PASSWORD env var)")

	flag.Parse()

	// Load .env file. godotenv does not override existing env vars, so
	// process env and explicit exports take precedence.
	_ = godotenv.Load()

	// Override flags with environment variables if set
	if envBucket := os.Getenv("SRTOPO_S3_BUCKET"); envBucket != "" {
		*s3BucketFlag = envBucket
	}
	if envRegion := os.Getenv("SRTOPO_S3_REGION"); envRegion != "" {
		*s3RegionFlag = envRegion
	}
	if envNeo4jURI := os.Getenv("NEO4J_URI"); envNeo4jURI != "" {
		*neo4jURIFlag = envNeo4jURI
	}
	if envNeo4jDatabase := os.Getenv("NEO4J_DATABASE"); envNeo4jDatabase != "" {
		*neo4jDatabaseFlag = envNeo4jDatabase
	}
	if envNeo4jUsername := os.Getenv("NEO4J_USERNAME"); envNeo4jUsername != "" {
		*neo4jUsernameFlag = envNeo4jUsername
	}
	if envNeo4jPassword := os.Getenv("NEO4J_PASSWORD"); envNeo4jPassword != "" {
		*neo4jPasswordFlag = envNeo4jPassword
	}

	if (*srcFlag == "") != (*dstFlag == "") {
		return errors.New("--src and --dst must be given together")
	}

	log := logger.New(*verboseFlag)

	log.Info("srtopo starting",
		"version", version,
		"commit", commit,
		"allow_partial", *allowPartialFlag,
	)
	metrics.BuildInfo.WithLabelValues(version, commit).Set(1)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigCh
		log.Info("received signal", "signal", sig.String())
		cancel()
	}()

	// Start prometheus metrics server
	go func() {
		listener, err := net.Listen("tcp", *metricsAddrFlag)
		if err != nil {
			log.Error("failed to start prometheus metrics server listener", "error", err)
			return
		}
		log.Info("prometheus metrics server listening", "address", listener.Addr().String())
		http.Handle("/metrics", promhttp.Handler())
		if err := http.Serve(listener, nil); err != nil {
			log.Error("failed to start prometheus metrics server", "error", err)
		}
	}()

	// Collect records from the configured snapshot source.
	var source collector.Source
	if *snapshotFlag != "" {
		source = collector.NewFileSource(*snapshotFlag)
	} else {
		s3Source, err := collector.NewS3Source(ctx, collector.S3SourceConfig{
			Bucket:      *s3BucketFlag,
			Region:      *s3RegionFlag,
			EndpointURL: *s3EndpointURLFlag,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 source: %w", err)
		}
		source = s3Source
	}
	defer source.Close()

	c, err := collector.New(collector.Config{
		Logger:         log,
		MaxConcurrency: *maxConcurrencyFlag,
		Timeout:        *collectTimeoutFlag,
		AllowPartial:   *allowPartialFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to create collector: %w", err)
	}

	collectStart := time.Now()
	records, err := c.CollectSnapshot(ctx, source)
	if err != nil {
		metrics.CollectionFailures.Inc()
		return fmt.Errorf("failed to collect snapshot: %w", err)
	}

	// With an inventory, re-collect through the per-node path so only
	// inventoried nodes land in the topology, in inventory order.
	if *configFlag != "" {
		inventory, err := config.Load(*configFlag)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		c, err = collector.New(collector.Config{
			Logger:         log,
			Fetcher:        collector.NewSnapshotFetcher(records),
			MaxConcurrency: *maxConcurrencyFlag,
			Timeout:        *collectTimeoutFlag,
			AllowPartial:   *allowPartialFlag,
		})
		if err != nil {
			return fmt.Errorf("failed to create collector: %w", err)
		}
		records, err = c.Collect(ctx, inventory.AllNodes())
		if err != nil {
			metrics.CollectionFailures.Inc()
			return fmt.Errorf("failed to collect nodes: %w", err)
		}
	}
	metrics.CollectionDuration.Observe(time.Since(collectStart).Seconds())

	policy := topology.PolicyStrict
	if *allowPartialFlag {
		policy = topology.PolicyDegraded
	}
	graph, err := topology.Build(records, topology.BuildConfig{
		Logger: log,
		Policy: policy,
	})
	if err != nil {
		return fmt.Errorf("failed to build topology: %w", err)
	}
	metrics.TopologyNodes.Set(float64(len(graph.Nodes())))
	metrics.TopologyLinks.Set(float64(len(graph.DirectedLinks())))

	// Mirror the topology into Neo4j when configured.
	if *neo4jURIFlag != "" {
		neo4jClient, err := graphstore.NewClient(ctx, log, *neo4jURIFlag, *neo4jDatabaseFlag, *neo4jUsernameFlag, *neo4jPasswordFlag)
		if err != nil {
			return fmt.Errorf("failed to create Neo4j client: %w", err)
		}
		defer neo4jClient.Close(ctx)

		store, err := graphstore.NewStore(graphstore.StoreConfig{
			Logger: log,
			Neo4j:  neo4jClient,
		})
		if err != nil {
			return fmt.Errorf("failed to create graph store: %w", err)
		}
		if err := store.Sync(ctx, graph); err != nil {
			return fmt.Errorf("failed to sync graph to Neo4j: %w", err)
		}
	}

	if *srcFlag != "" {
		path, err := graph.ShortestPath(*srcFlag, *dstFlag)
		if err != nil {
			return fmt.Errorf("failed to compute path: %w", err)
		}
		fmt.Println(topology.FormatPath(path))
	}

	if *adjMatrixFlag {
		fmt.Print(graph.AdjacencyMatrixText())
	}

	if !*serveFlag {
		return nil
	}

	srv, err := server.New(server.Config{Logger: log, Graph: graph})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	httpServer := &http.Server{
		Addr:    *listenAddrFlag,
		Handler: srv.Router(),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "address", *listenAddrFlag)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	select {
	case err := <-serverErrCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	log.Info("srtopo stopped")
	return nil
}
