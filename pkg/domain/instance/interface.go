package instance

import (
	"github.com/harborml/berth/pkg/domain/instance/db"
	"github.com/harborml/berth/pkg/domain/instance/k8s"
)

type Interface interface {
	Database() db.Interface
	K8s() k8s.Interface
}

type impl struct {
	db       db.Interface
	workload k8s.Interface
}

func New(db db.Interface, workload k8s.Interface) Interface {
	return &impl{db: db, workload: workload}
}

func (i *impl) Database() db.Interface {
	return i.db
}

func (i *impl) K8s() k8s.Interface {
	return i.workload
}
