package backend

import "io"

// Options configures a single emission run. BuildID is stamped into the
// module's header comment so two runs of identical source are still told
// apart in build logs; it is generated once by the driver, never by a core
// phase, so the compilation phases themselves stay pure.
type Options struct {
	Out     io.Writer
	BuildID string
	Target  string
}
