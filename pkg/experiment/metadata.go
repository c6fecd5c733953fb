package experiment

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"github.com/Friedrichqi/liberorun/pkg/conf"
)

const (
	metadataKindFlags    = "flags"
	metadataKindEnviron  = "environ"
	metadataKindPlatform = "platform"
)

// MetadataConfig encodes the settings for connecting to the database.
type MetadataConfig struct {
	CassandraAddress           string
	CassandraUsername          string
	CassandraPassword          string
	CassandraConnectionTimeout time.Duration
}

// DefaultMetadataConfig returns a setup which uses a Cassandra cluster
// running on localhost without any authentication.
func DefaultMetadataConfig() MetadataConfig {
	return MetadataConfig{
		CassandraAddress:           "127.0.0.1",
		CassandraUsername:          "",
		CassandraPassword:          "",
		CassandraConnectionTimeout: 0,
	}
}

// MetadataConfigFromFlags applies the Cassandra settings from the command
// line flags and environment variables.
func MetadataConfigFromFlags() MetadataConfig {
	return MetadataConfig{
		CassandraAddress:           conf.CassandraAddress.Value(),
		CassandraUsername:          conf.CassandraUsername.Value(),
		CassandraPassword:          conf.CassandraPassword.Value(),
		CassandraConnectionTimeout: conf.CassandraConnectionTimeout.Value(),
	}
}

// MetadataMap encodes the key value pairs to be stored.
type MetadataMap map[string]string

// Metadata is a helper struct which keeps the Cassandra session alive, holds
// the active configuration and the session id to tag the metadata with.
type Metadata struct {
	sessionID string
	config    MetadataConfig
	session   *gocql.Session
}

// NewMetadata returns the Metadata helper from a session id and configuration.
// Connect() still needs to be called to get an active Cassandra session.
func NewMetadata(sessionID string, config MetadataConfig) *Metadata {
	return &Metadata{
		sessionID: sessionID,
		config:    config,
	}
}

// Connect creates a session to the Cassandra cluster. This function should
// only be called once.
func (m *Metadata) Connect() error {
	cluster := gocql.NewCluster(m.config.CassandraAddress)

	cluster.Consistency = gocql.LocalOne
	cluster.SerialConsistency = gocql.LocalSerial
	cluster.ProtoVersion = 4
	cluster.Timeout = m.config.CassandraConnectionTimeout

	if m.config.CassandraUsername != "" && m.config.CassandraPassword != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: m.config.CassandraUsername,
			Password: m.config.CassandraPassword,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return err
	}

	m.session = session

	if err := session.Query("CREATE KEYSPACE IF NOT EXISTS liberorun WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': 1};").Exec(); err != nil {
		return err
	}

	// NOTE: Schema consistency check is ignored by CREATE query. To ensure
	// schema consistency we perform a simple SELECT query on
	// 'system_schema.keyspaces'.
	if err = session.Query("SELECT * FROM system_schema.keyspaces;").Exec(); err != nil {
		return err
	}

	if err = session.Query("CREATE TABLE IF NOT EXISTS liberorun.metadata (session_id text, kind text, time timestamp, timeuuid TIMEUUID, metadata map<text,text>, PRIMARY KEY ((session_id), timeuuid),) WITH CLUSTERING ORDER BY (timeuuid DESC);").Exec(); err != nil {
		return err
	}

	// NOTE: Same issue as above.
	if err = session.Query("SELECT * FROM system_schema.keyspaces;").Exec(); err != nil {
		return err
	}

	return nil
}

func (m *Metadata) storeMap(metadata MetadataMap, kind string) error {
	return m.session.Query(`INSERT INTO liberorun.metadata (session_id, kind, time, timeuuid, metadata) VALUES (?, ?, ?, ?, ?)`,
		m.sessionID, kind, time.Now(), gocql.TimeUUID(), metadata).Exec()
}

// RecordFlags stores the current runtime configuration of all flags.
func (m *Metadata) RecordFlags() error {
	return m.storeMap(conf.GetFlags(), metadataKindFlags)
}

// RecordEnviron stores the launcher's own environment variables.
func (m *Metadata) RecordEnviron() error {
	environ := MetadataMap{}
	for _, entry := range os.Environ() {
		fields := strings.SplitN(entry, "=", 2)
		if len(fields) != 2 {
			continue
		}
		environ[fields[0]] = fields[1]
	}
	return m.storeMap(environ, metadataKindEnviron)
}

// RecordPlatform stores basic information about the host the launcher ran on.
func (m *Metadata) RecordPlatform() error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = err.Error()
	}

	platform := MetadataMap{
		"hostname": hostname,
		"os":       runtime.GOOS,
		"arch":     runtime.GOARCH,
		"cpus":     strconv.Itoa(runtime.NumCPU()),
	}
	return m.storeMap(platform, metadataKindPlatform)
}

// Disconnect closes the Cassandra session.
func (m *Metadata) Disconnect() {
	if m.session != nil {
		m.session.Close()
	}
}
