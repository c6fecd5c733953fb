package conf

import "time"

// Cassandra metadata store connection flags.
var (
	// CassandraAddress represents cassandra address flag.
	CassandraAddress = NewStringFlag("cassandra_addr", "Address of Cassandra DB endpoint for session metadata", "127.0.0.1")
	// CassandraUsername holds the user name which will be presented when connecting to the cluster.
	CassandraUsername = NewStringFlag("cassandra_username", "The user name which will be presented when connecting to the cluster", "")
	// CassandraPassword holds the password which will be presented when connecting to the cluster.
	CassandraPassword = NewStringFlag("cassandra_password", "The password which will be presented when connecting to the cluster", "")
	// CassandraConnectionTimeout limits the time spent trying to connect to the cluster.
	CassandraConnectionTimeout = NewDurationFlag("cassandra_timeout", "Timeout for the connection to Cassandra", 0*time.Second)
)
