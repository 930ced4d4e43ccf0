package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Collector metrics
	FragmentsLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "traitdex_fragments_loaded_total",
		Help: "Total number of implementor fragments decoded from the docs dir.",
	})

	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "traitdex_scans_total",
		Help: "Total number of docs dir scans.",
	})

	ScanErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "traitdex_scan_errors_total",
		Help: "Number of docs dir scans that failed.",
	})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "traitdex_scan_duration_seconds",
		Help:    "Duration of a full scan+merge of the docs dir.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	// Registry metrics
	PublishesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "traitdex_publishes_total",
		Help: "Number of implementor maps published to the registry.",
	})

	RegistryTraits = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "traitdex_registry_traits",
		Help: "Number of traits in the last published map.",
	})

	RegistryImplementors = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "traitdex_registry_implementors",
		Help: "Total number of implementor entries in the last published map.",
	})

	LastPublishUnix = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "traitdex_last_publish_timestamp_seconds",
		Help: "Unix time of the last successful publish.",
	})

	// Peer aggregation
	PeerFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "traitdex_peer_fetches_total",
		Help: "Peer artifact fetches, partitioned by outcome.",
	}, []string{"outcome"})

	// Snapshot archive
	SnapshotsUploaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "traitdex_snapshots_uploaded_total",
		Help: "Number of registry snapshots uploaded, partitioned by storage backend.",
	}, []string{"backend"})

	SnapshotsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "traitdex_snapshots_deleted_total",
		Help: "Number of snapshots deleted by retention logic.",
	})

	SnapshotUploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "traitdex_snapshot_upload_duration_seconds",
		Help:    "Duration of uploading one registry snapshot.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
)
