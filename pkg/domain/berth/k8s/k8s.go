package k8s

import (
	bconf "github.com/harborml/berth/pkg/configs/backend"
	"github.com/harborml/berth/pkg/domain/berth/k8s/cluster"
	instance "github.com/harborml/berth/pkg/domain/instance/k8s"
)

type KubernetesInterfaces interface {
	Instance() instance.Interface
}

type impl struct {
	instance instance.Interface
}

func New(
	cluster cluster.Cluster,
	config *bconf.ClusterConfig,
) KubernetesInterfaces {
	return &impl{
		instance: instance.New(config, cluster),
	}
}

func (i *impl) Instance() instance.Interface {
	return i.instance
}
