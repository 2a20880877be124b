package berth

import (
	"context"

	bconf "github.com/harborml/berth/pkg/configs/backend"
	"github.com/harborml/berth/pkg/domain/berth/db/postgres"
	"github.com/harborml/berth/pkg/domain/berth/k8s"
	"github.com/harborml/berth/pkg/domain/berth/k8s/cluster"
	"github.com/harborml/berth/pkg/domain/instance"
	"github.com/harborml/berth/pkg/domain/model"
	"github.com/harborml/berth/pkg/domain/schema"
	"github.com/harborml/berth/pkg/utils/kubeutil"
	"k8s.io/client-go/kubernetes"
)

type Berth interface {
	Config() *bconf.ClusterConfig

	Instance() instance.Interface
	Model() model.Interface

	Schema() schema.Interface
}

type berth struct {
	config  *bconf.ClusterConfig
	cluster cluster.Cluster

	instance instance.Interface
	model    model.Interface

	schema schema.Interface
}

func Default(
	ctx context.Context,
	config *bconf.ClusterConfig,
	options ...Option,
) (Berth, error) {
	clientset := kubeutil.ConnectToK8s()
	return New(ctx, config, clientset, options...)
}

func New(
	ctx context.Context,
	config *bconf.ClusterConfig,
	clientset *kubernetes.Clientset,
	options ...Option,
) (Berth, error) {
	opt := &_options{}
	for _, o := range options {
		o(opt)
	}

	pgOptions := append(
		[]postgres.Option{postgres.WithInstanceRetention(config.Grace().Retention())},
		opt.pg...,
	)
	pg, err := postgres.New(ctx, config.Database(), pgOptions...)
	if err != nil {
		return nil, err
	}

	k8sclient := cluster.WrapK8sClient(clientset)
	kluster := cluster.AttachCluster(k8sclient, config.Namespace(), config.Domain())

	k8sifs := k8s.New(kluster, config)

	return &berth{
		config:  config,
		cluster: kluster,

		instance: instance.New(pg.Instance(), k8sifs.Instance()),
		model:    model.New(pg.Model()),

		schema: schema.New(pg.Schema()),
	}, nil
}

type Option func(*_options)

type _options struct {
	pg []postgres.Option
}

func WithSchemaRepository(repository string) Option {
	return func(o *_options) {
		o.pg = append(o.pg, postgres.WithSchemaRepository(repository))
	}
}

func (b *berth) Config() *bconf.ClusterConfig {
	return b.config
}

func (b *berth) Instance() instance.Interface {
	return b.instance
}

func (b *berth) Model() model.Interface {
	return b.model
}

func (b *berth) Schema() schema.Interface {
	return b.schema
}
