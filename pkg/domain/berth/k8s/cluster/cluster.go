package cluster

import (
	"context"
	"errors"
	"io"
	"time"

	k8serrors "github.com/harborml/berth/pkg/domain/errors/k8serrors"
	"github.com/harborml/berth/pkg/utils/retry"
	kubecore "k8s.io/api/core/v1"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8s "k8s.io/client-go/kubernetes"
)

// subset of k8s.Clientset
type K8sClient interface {
	CreatePod(ctx context.Context, namespace string, spec *kubecore.Pod) (*kubecore.Pod, error)
	GetPod(ctx context.Context, namespace string, name string) (*kubecore.Pod, error)
	DeletePod(ctx context.Context, namespace string, name string) error
	FindPods(ctx context.Context, namespace string, labelSelector LabelSelector) ([]kubecore.Pod, error)

	Log(ctx context.Context, namespace string, podname string, container string, follow bool) (io.ReadCloser, error)
}

// A wrapper for the type k8s.Clientset; because it does not prefer method chain-style invocations of that type.
type k8sClient struct {
	client *k8s.Clientset
}

// type check: k8sClient implements K8sClient
var _ K8sClient = &k8sClient{}

func WrapK8sClient(c *k8s.Clientset) K8sClient {
	return &k8sClient{client: c}
}

func (k *k8sClient) CreatePod(ctx context.Context, namespace string, pod *kubecore.Pod) (*kubecore.Pod, error) {
	return k.client.CoreV1().Pods(namespace).Create(ctx, pod, kubeapimeta.CreateOptions{})
}

func (k *k8sClient) GetPod(ctx context.Context, namespace string, name string) (*kubecore.Pod, error) {
	return k.client.CoreV1().Pods(namespace).Get(ctx, name, kubeapimeta.GetOptions{})
}

func (k *k8sClient) DeletePod(ctx context.Context, namespace string, podname string) error {
	return k.client.CoreV1().Pods(namespace).Delete(ctx, podname, *kubeapimeta.NewDeleteOptions(0))
}

func (k *k8sClient) FindPods(ctx context.Context, namespace string, labels LabelSelector) ([]kubecore.Pod, error) {
	resp, err := k.client.CoreV1().Pods(namespace).List(ctx, kubeapimeta.ListOptions{
		LabelSelector: labels.QueryString(),
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (k *k8sClient) Log(ctx context.Context, namespace string, podname string, container string, follow bool) (io.ReadCloser, error) {
	return k.client.
		CoreV1().
		Pods(namespace).
		GetLogs(podname, &kubecore.PodLogOptions{Container: container, Follow: follow}).
		Stream(ctx)
}

type PodPhase kubecore.PodPhase

var (
	PodPending   PodPhase = PodPhase(kubecore.PodPending)
	PodRunning   PodPhase = PodPhase(kubecore.PodRunning)
	PodSucceeded PodPhase = PodPhase(kubecore.PodSucceeded)
	PodFailed    PodPhase = PodPhase(kubecore.PodFailed)
	PodUnknown   PodPhase = PodPhase(kubecore.PodUnknown)
)

// Abstraction of k8s Pod.
//
// Values are a SNAPSHOT of the pod when you get the instance.
// To refresh, get a new instance with `Cluster.GetPod`.
type Pod interface {
	Name() string
	Status() PodPhase

	// pod IP. It can be empty until the pod is scheduled on a node.
	Host() string

	// container port numbers, by port name.
	Ports() map[string]int32

	// labels of the pod.
	Labels() map[string]string

	// when the pod has been created.
	CreatedAt() time.Time

	// Log get log stream of a container in the pod.
	//
	// # Args
	//
	// - ctx context.Context
	//
	// - containerName string: name of container to get log
	//
	// - follow bool: keep the stream open and follow new log lines
	//
	// # Return
	//
	// - io.ReadCloser: the log stream of the container.
	//
	// - error : error if any.
	Log(ctx context.Context, containerName string, follow bool) (io.ReadCloser, error)

	// release resources.
	//
	// Delete pod.
	Close() error
}

type pod struct {
	description kubecore.Pod
	client      K8sClient
	onClose     func() error
}

var _ Pod = &pod{}

func (p *pod) Name() string {
	return p.description.Name
}

func (p *pod) Status() PodPhase {
	return PodPhase(p.description.Status.Phase)
}

func (p *pod) Host() string {
	return p.description.Status.PodIP
}

func (p *pod) Ports() map[string]int32 {
	ports := map[string]int32{}
	for _, c := range p.description.Spec.Containers {
		for _, p := range c.Ports {
			ports[p.Name] = p.ContainerPort
		}
	}
	return ports
}

func (p *pod) Labels() map[string]string {
	return p.description.Labels
}

func (p *pod) CreatedAt() time.Time {
	return p.description.CreationTimestamp.Time
}

func (p *pod) Log(ctx context.Context, containerName string, follow bool) (io.ReadCloser, error) {
	return p.client.Log(ctx, p.description.Namespace, p.description.Name, containerName, follow)
}

func (p *pod) Close() error {
	if p.onClose == nil {
		return nil
	}
	return p.onClose()
}

// Requirement is a function that checks if creating k8s resource satisfies the requirement.
//
// # Return
//
// - error: When the value satisfies the requirement, return nil.
// If it is waiting to satisfy the requirement, return `retry.ErrRetry`.
// Otherwise, return error.
type Requirement[T any] func(value T) error

func satisfyAll[T any](value T, req []Requirement[T]) error {
	for _, r := range req {
		if err := r(value); err != nil {
			return err
		}
	}
	return nil
}

var PodHasBeenRunning Requirement[*kubecore.Pod] = func(p *kubecore.Pod) error {
	switch p.Status.Phase {
	case kubecore.PodRunning, kubecore.PodFailed, kubecore.PodSucceeded:
		return nil
	default:
		return retry.ErrRetry
	}
}

var PodHasBeenPending Requirement[*kubecore.Pod] = func(p *kubecore.Pod) error {
	switch p.Status.Phase {
	case kubecore.PodPending, kubecore.PodRunning, kubecore.PodFailed, kubecore.PodSucceeded:
		return nil
	default:
		return retry.ErrRetry
	}
}

type Cluster interface {
	Namespace() string
	Domain() string

	// Create new Pod
	//
	// Args
	//
	// - context.Context
	//
	// - backoff retry.Backoff: backoff policy to wait for Pod satisfy all requirements.
	//
	// - *Pod: pod specification
	//
	// - requirements ...Requirement[*kubecore.Pod]: requirements for the Pod.
	// If not given, PodHasBeenRunning is used as default.
	//
	// Return
	//
	// - retry.Promise[Pod]
	//
	// Promise which is resolved when the Pod is created & satisfied requirements.
	//
	// The Promise may have Error below:
	//
	// - k8serrors.ErrConflict: Pod is already created.
	//
	// - k8serrors.ErrMissing: Pod is missing after created until meets requirements.
	//
	// - other errors come from Requirements and context.Context
	//
	// Whether or not the Promise has Error, pod can be created.
	// So, you may need to Close() it.
	NewPod(context.Context, retry.Backoff, *kubecore.Pod, ...Requirement[*kubecore.Pod]) retry.Promise[Pod]

	//	Get existing Pod
	//
	// Args
	//
	// - context.Context
	//
	// - backoff retry.Backoff: backoff policy to wait for Pod satisfy all requirements.
	//
	// - string: name of pod
	//
	// - requirements ...Requirement[*kubecore.Pod]: requirements for the Pod.
	// If not given, PodHasBeenRunning is used as default.
	//
	// Return
	//
	// - retry.Promise[Pod]
	//
	// Promise which is resolved when the Pod is found & satisfied requirements.
	//
	// The Promise may have Error below:
	//
	// - k8serrors.ErrMissing: Pod is not found.
	//
	// - other errors come from Requirements and context.Context
	GetPod(context.Context, retry.Backoff, string, ...Requirement[*kubecore.Pod]) retry.Promise[Pod]

	// List Pods matching the label selector, without waiting for anything.
	//
	// Args
	//
	// - context.Context
	//
	// - LabelSelector: labels which found pods should have.
	//
	// Return
	//
	// - []Pod: found pods. Closing them deletes the pods.
	//
	// - error
	FindPods(context.Context, LabelSelector) ([]Pod, error)
}

type k8sCluster struct {
	client    K8sClient
	namespace string
	domain    string
}

// type check: k8sCluster implements Cluster
var _ Cluster = &k8sCluster{}

// Attach kubernetes cluster.
//
// args:
//   - client: k8s clientset
//   - namespace: k8s namespace
//   - domain: k8s-internal domain name. If empty string is passed, it uses `"cluster.local"` as default.
func AttachCluster(client K8sClient, namespace string, domain string) Cluster {
	if domain == "" {
		domain = "cluster.local"
	}
	return &k8sCluster{client: client, namespace: namespace, domain: domain}
}

func (c *k8sCluster) Namespace() string {
	return c.namespace
}

func (c *k8sCluster) Domain() string {
	return c.domain
}

func (c *k8sCluster) NewPod(
	ctx context.Context, r retry.Backoff, p *kubecore.Pod,
	requirements ...Requirement[*kubecore.Pod],
) retry.Promise[Pod] {
	if len(requirements) == 0 {
		requirements = []Requirement[*kubecore.Pod]{PodHasBeenRunning}
	}
	select {
	case <-ctx.Done():
		return retry.Failed[Pod](ctx.Err())
	default:
	}

	_close := func() error {
		ctx := context.Background()
		return c.client.DeletePod(ctx, c.namespace, p.ObjectMeta.Name)
	}

	_pod, err := c.client.CreatePod(ctx, c.namespace, p)
	if err != nil {
		if kubeerr.IsAlreadyExists(err) {
			return retry.Failed[Pod](k8serrors.NewConflictCausedBy("", err))
		}
		return retry.Failed[Pod](err)
	}
	if err := satisfyAll(_pod, requirements); err == nil {
		return retry.Ok[Pod](&pod{description: *_pod, client: c.client, onClose: _close})
	} else if !errors.Is(err, retry.ErrRetry) {
		return retry.Failed[Pod](err)
	}

	return c.GetPod(ctx, r, _pod.ObjectMeta.Name, requirements...)
}

func (c *k8sCluster) GetPod(
	ctx context.Context, r retry.Backoff, name string,
	requirements ...Requirement[*kubecore.Pod],
) retry.Promise[Pod] {
	if len(requirements) == 0 {
		requirements = []Requirement[*kubecore.Pod]{PodHasBeenRunning}
	}
	_close := func() error {
		ctx := context.Background()
		return c.client.DeletePod(ctx, c.namespace, name)
	}

	return retry.Go(ctx, r, func() (Pod, error) {
		_pod, err := c.client.GetPod(ctx, c.namespace, name)
		if err != nil {
			if kubeerr.IsNotFound(err) {
				return nil, k8serrors.NewMissingCausedBy("", err)
			}
			return nil, err
		}
		ret := &pod{description: *_pod, client: c.client, onClose: _close}
		return ret, satisfyAll(_pod, requirements)
	})
}

func (c *k8sCluster) FindPods(
	ctx context.Context, selector LabelSelector,
) ([]Pod, error) {
	found, err := c.client.FindPods(ctx, c.namespace, selector)
	if err != nil {
		return nil, err
	}

	pods := make([]Pod, len(found))
	for i, f := range found {
		name := f.ObjectMeta.Name
		pods[i] = &pod{
			description: f,
			client:      c.client,
			onClose: func() error {
				ctx := context.Background()
				return c.client.DeletePod(ctx, c.namespace, name)
			},
		}
	}
	return pods, nil
}
