// Package loader mounts the HTTP features of the server.
//
// A feature (atlas, integrity, export) wraps one service and its fiber
// handler. Register keeps registration order; LoadAll skips features whose
// IsEnabled is false, so export disappears when neither the bucket nor the
// database is reachable.
//
//	mgr := loader.NewManager()
//	mgr.Register(atlas.NewFeature(svc))
//	loaded, err := mgr.LoadAll(app)
package loader
