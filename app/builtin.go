package app

// Built-in modules register themselves with the core registries.
import (
	_ "github.com/kilianp07/loadshare/infra/catalog"
	_ "github.com/kilianp07/loadshare/infra/metrics"
	_ "github.com/kilianp07/loadshare/infra/mqtt"
	_ "github.com/kilianp07/loadshare/infra/profile"
	_ "github.com/kilianp07/loadshare/infra/store"
)
