package backend

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/harborml/berth/pkg/domain"
	"github.com/harborml/berth/pkg/utils/pointer"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
//
// All types named `pkg/configs/backend.XxxMarshall` are `Marshalled[*Xxx]` .
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

type BackendConfigMarshall struct {
	Port           int32                         `yaml:"port"`
	Cluster        *ClusterConfigMarshall        `yaml:"cluster"`
	ServerlessCost *ServerlessCostConfigMarshall `yaml:"serverlessCost,omitempty"`
}

var _ Marshalled[*BackendConfig] = &BackendConfigMarshall{}

func (b *BackendConfigMarshall) trySeal(path string) *BackendConfig {
	rates := domain.ServerlessRates{}
	if b.ServerlessCost != nil {
		rates = b.ServerlessCost.trySeal(path + ".serverlessCost")
	}
	return &BackendConfig{
		port:           b.Port,
		cluster:        nonnil(b.Cluster, path+".cluster").trySeal(path + ".cluster"),
		serverlessCost: rates,
	}
}

// Configuration of the cluster berth deploys instances into.
//
// This type is marshalling value and mutable.
// Consider to use immutable version, `ClusterConfig`.
// You can get `ClusterConfig` instance with `ClusterConfigMarshall.TrySeal()`
type ClusterConfigMarshall struct {
	Namespace string                    `yaml:"namespace"`
	Domain    string                    `yaml:"domain,omitempty"`
	Database  string                    `yaml:"database"`
	Auth      *AuthConfigMarshall       `yaml:"auth"`
	Instance  *InstanceConfigMarshall   `yaml:"instance"`
	Limits    *LimitsConfigMarshall     `yaml:"limits,omitempty"`
	Grace     *GraceConfigMarshall      `yaml:"grace,omitempty"`
	HostTypes []*HostTypeConfigMarshall `yaml:"hostTypes,omitempty"`
}

// verify configuration value and create "readonly" version of this.
//
// IT WILL PANIC if any misconfiguration is found.
func (cm *ClusterConfigMarshall) TrySeal() *ClusterConfig {
	return cm.trySeal("(root)")
}

func (cm *ClusterConfigMarshall) trySeal(path string) *ClusterConfig {
	domainName := cm.Domain
	if domainName == "" {
		domainName = "cluster.local"
	}

	limits := pointer.OrDefault(cm.Limits, LimitsConfigMarshall{})
	grace := pointer.OrDefault(cm.Grace, GraceConfigMarshall{})

	hostTypes := make([]domain.HostType, len(cm.HostTypes))
	for i, ht := range cm.HostTypes {
		hostTypes[i] = nonnil(ht, fmt.Sprintf("%s.hostTypes[%d]", path, i)).
			trySeal(fmt.Sprintf("%s.hostTypes[%d]", path, i))
	}

	return &ClusterConfig{
		namespace: required(cm.Namespace, path+".namespace"),
		domain:    required(domainName, path+".domain"),
		database:  required(cm.Database, path+".database"),
		auth:      nonnil(cm.Auth, path+".auth").trySeal(path + ".auth"),
		instance:  nonnil(cm.Instance, path+".instance").trySeal(path + ".instance"),
		limits:    limits.trySeal(path + ".limits"),
		grace:     grace.trySeal(path + ".grace"),
		hostTypes: hostTypes,
	}
}

type AuthConfigMarshall struct {
	SignKey string `yaml:"signKey"`
}

func (am *AuthConfigMarshall) trySeal(path string) *AuthConfig {
	signKey, err := base64.StdEncoding.DecodeString(
		required(am.SignKey, path+".signKey"),
	)
	if err != nil {
		panic(fmt.Errorf("%s.signKey can not be decoded as base64: %w", path, err))
	}
	return &AuthConfig{signKey: signKey}
}

type InstanceConfigMarshall struct {
	Port          int32  `yaml:"port"`
	HostTypeLabel string `yaml:"hostTypeLabel,omitempty"`
}

func (im *InstanceConfigMarshall) trySeal(path string) *InstanceConfig {
	hostTypeLabel := im.HostTypeLabel
	if hostTypeLabel == "" {
		hostTypeLabel = domain.HostTypeAttribute
	}
	return &InstanceConfig{
		port:          required(im.Port, path+".port"),
		hostTypeLabel: hostTypeLabel,
	}
}

type LimitsConfigMarshall struct {
	MaxActivePerOwner int `yaml:"maxActivePerOwner,omitempty"`
}

func (lm *LimitsConfigMarshall) trySeal(path string) *LimitsConfig {
	maxActivePerOwner := lm.MaxActivePerOwner
	if maxActivePerOwner == 0 {
		maxActivePerOwner = 5
	}
	if maxActivePerOwner < 0 {
		panic(path + ".maxActivePerOwner should be positive")
	}
	return &LimitsConfig{maxActivePerOwner: maxActivePerOwner}
}

type GraceConfigMarshall struct {
	Startup   string `yaml:"startup,omitempty"`
	Teardown  string `yaml:"teardown,omitempty"`
	Orphan    string `yaml:"orphan,omitempty"`
	Retention string `yaml:"retention,omitempty"`
}

func (gm *GraceConfigMarshall) trySeal(path string) *GraceConfig {
	return &GraceConfig{
		startup:   duration(gm.Startup, 10*time.Minute, path+".startup"),
		teardown:  duration(gm.Teardown, 5*time.Minute, path+".teardown"),
		orphan:    duration(gm.Orphan, 10*time.Minute, path+".orphan"),
		retention: duration(gm.Retention, 24*time.Hour, path+".retention"),
	}
}

type HostTypeConfigMarshall struct {
	Name        string  `yaml:"name"`
	GPUCount    int     `yaml:"gpuCount"`
	GPUMemory   int     `yaml:"gpuMemory"`
	CostPerHour float64 `yaml:"costPerHour,omitempty"`
}

func (hm *HostTypeConfigMarshall) trySeal(path string) domain.HostType {
	return domain.HostType{
		Name:        required(hm.Name, path+".name"),
		GPUCount:    required(hm.GPUCount, path+".gpuCount"),
		GPUMemory:   required(hm.GPUMemory, path+".gpuMemory"),
		CostPerHour: hm.CostPerHour,
	}
}

type ServerlessCostConfigMarshall struct {
	CPUUnitPerHour   float64 `yaml:"cpuUnitPerHour"`
	MemoryGiBPerHour float64 `yaml:"memoryGiBPerHour"`
}

func (sm *ServerlessCostConfigMarshall) trySeal(path string) domain.ServerlessRates {
	return domain.ServerlessRates{
		VCPUPerHour:      sm.CPUUnitPerHour,
		MemoryGiBPerHour: sm.MemoryGiBPerHour,
	}
}

func duration(v string, fallback time.Duration, path string) time.Duration {
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s can not be parsed as duration: %w", path, err))
	}
	if d <= 0 {
		panic(path + " should be positive")
	}
	return d
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}
