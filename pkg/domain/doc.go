// domain package contains the Domain Models and Interfaces for the Berth application.
//
// `domain/berth` package exposes the root object for the Berth application.
// Entrypoints of applications should instantiate the Berth object and use it to interact with the domain.
//
// `domain/ENTITY.go` has high-level entities (Domain Model types) and functions.
// For example, `domain/instance.go` contains the `Instance` entity.
//
// `domain/ENTITY` directory contains the "physical" representation of the domain entities, the RDB or Kubernetes(k8s).
// For example, `domain/instance/db` contains the database expression of the instance entity described in `domain/instance.go`,
// and `domain/instance/k8s` contains the Kubernetes expression of.
//
// `domain/ENTITY/interface.go` exposes the client interface to handle the domain entity in DB/k8s.
//
// # Entities
//
// Core entities in the domain are:
//
// - `model`: Catalog entry of a deployable packaged model. It records the image reference
// and the minimum compute the model needs. The catalog is read-mostly; instances are
// deployed from it.
//
// - `instance`: A tracked, running deployment of a model, owned by the user who deployed it.
// In k8s, an instance is represented by a Pod. The instance record advances along a
// status state machine (starting -> running -> stopping -> stopped, with error as the
// failure terminal), and every status mutation is a conditional write keyed on the
// expected prior status, so that API handlers and loops never clobber each other.
//
// - `shape`: The resolved compute description governing how an instance is scheduled:
// serverless cpu/memory or a GPU host pool with a placement constraint. Resolution is a
// pure function over (descriptor, model, host types); see `domain/shape.go`.
//
// And others:
//
// - `auth`: The authorization predicate over (requester, instance, action) and the
// token verification used by the API layer.
//
// - `loop`: Names for the recurring background sweeps. Implementation of the loops is
// in `cmd/loops/tasks/` directory.
package domain
