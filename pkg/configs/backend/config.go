package backend

import (
	"time"

	"github.com/harborml/berth/pkg/domain"
)

type BackendConfig struct {
	port           int32
	cluster        *ClusterConfig
	serverlessCost domain.ServerlessRates
}

func (c *BackendConfig) Port() int32 {
	return c.port
}

func (c *BackendConfig) Cluster() *ClusterConfig {
	return c.cluster
}

// Hourly rates of the serverless pool, for cost estimates.
func (c *BackendConfig) ServerlessCost() domain.ServerlessRates {
	return c.serverlessCost
}

// Configuration for the cluster berth deploys instances into.
//
// to get `ClusterConfig` instance, use `ClusterConfigMarshall.TrySeal()` .
type ClusterConfig struct {
	namespace string
	domain    string
	database  string
	auth      *AuthConfig
	instance  *InstanceConfig
	limits    *LimitsConfig
	grace     *GraceConfig
	hostTypes []domain.HostType
}

// k8s namespace where instances are deployed.
func (c *ClusterConfig) Namespace() string {
	return c.namespace
}

// k8s domain of the cluster. default = "cluster.local"
func (c *ClusterConfig) Domain() string {
	return c.domain
}

// Connection string for database.
func (c *ClusterConfig) Database() string {
	return c.database
}

func (c *ClusterConfig) Auth() *AuthConfig {
	return c.auth
}

// Configuration for instance workloads.
func (c *ClusterConfig) Instance() *InstanceConfig {
	return c.instance
}

func (c *ClusterConfig) Limits() *LimitsConfig {
	return c.limits
}

func (c *ClusterConfig) Grace() *GraceConfig {
	return c.grace
}

// Host types of the GPU pool, as the resolver should know them.
func (c *ClusterConfig) HostTypes() []domain.HostType {
	return c.hostTypes
}

type AuthConfig struct {
	signKey []byte
}

// HS256 secret which bearer tokens should be signed with.
func (a *AuthConfig) SignKey() []byte {
	return a.signKey
}

type InstanceConfig struct {
	port          int32
	hostTypeLabel string
}

// Port where every instance workload serves its model API.
func (i *InstanceConfig) Port() int32 {
	return i.port
}

// Node label key naming the host type of a GPU pool node.
func (i *InstanceConfig) HostTypeLabel() string {
	return i.hostTypeLabel
}

type LimitsConfig struct {
	maxActivePerOwner int
}

// How many starting/running instances one owner may have. default = 5
func (l *LimitsConfig) MaxActivePerOwner() int {
	return l.maxActivePerOwner
}

// Grace periods of the instance lifecycle.
//
// Each period bounds how long an instance may stay in a transitional
// status before the sweeps give it up as failed.
type GraceConfig struct {
	startup   time.Duration
	teardown  time.Duration
	orphan    time.Duration
	retention time.Duration
}

// How long a starting instance may take to become healthy. default = 10m
func (g *GraceConfig) Startup() time.Duration {
	return g.startup
}

// How long a stopping instance may take to go away. default = 5m
func (g *GraceConfig) Teardown() time.Duration {
	return g.teardown
}

// How old a workload unknown to the record store must be
// before the orphan sweep tears it down. default = 10m
func (g *GraceConfig) Orphan() time.Duration {
	return g.orphan
}

// How long terminal records are kept before purged. default = 24h
func (g *GraceConfig) Retention() time.Duration {
	return g.retention
}
