package hook

import (
	api_instances "github.com/harborml/berth/pkg/api/types/instances"
	cfg_hook "github.com/harborml/berth/pkg/configs/hook"
)

// Build builds a webhook.
//
// The webhook sends the Instance Detail as a JSON payload to the URLs in cfg,
// and merges responses from "before" URLs with merge.
func Build[R any](cfg cfg_hook.WebHook, merge func(a, b R) R) Web[api_instances.Detail, R] {
	return Web[api_instances.Detail, R]{
		BeforeURL: cfg.Before,
		AfterURL:  cfg.After,
		Merge:     merge,
	}
}
