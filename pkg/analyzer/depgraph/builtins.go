package depgraph

import "strings"

// builtinModules are the Node.js platform modules that never resolve to a
// file in the project.
var builtinModules = map[string]struct{}{
	"assert": {}, "assert/strict": {}, "async_hooks": {}, "buffer": {},
	"child_process": {}, "cluster": {}, "console": {}, "constants": {},
	"crypto": {}, "dgram": {}, "diagnostics_channel": {}, "dns": {},
	"dns/promises": {}, "domain": {}, "events": {}, "fs": {},
	"fs/promises": {}, "http": {}, "http2": {}, "https": {},
	"inspector": {}, "module": {}, "net": {}, "os": {},
	"path": {}, "path/posix": {}, "path/win32": {}, "perf_hooks": {},
	"process": {}, "punycode": {}, "querystring": {}, "readline": {},
	"readline/promises": {}, "repl": {}, "stream": {}, "stream/promises": {},
	"stream/web": {}, "string_decoder": {}, "sys": {}, "timers": {},
	"timers/promises": {}, "tls": {}, "trace_events": {}, "tty": {},
	"url": {}, "util": {}, "util/types": {}, "v8": {},
	"vm": {}, "wasi": {}, "worker_threads": {}, "zlib": {},
}

// IsBuiltin reports whether a non-relative specifier names a platform
// builtin. Any "node:" specifier counts.
func IsBuiltin(specifier string) bool {
	if strings.HasPrefix(specifier, "node:") {
		return true
	}
	_, ok := builtinModules[specifier]
	return ok
}

// PackageName extracts the package from a bare specifier: "@scope/pkg" for
// scoped packages, otherwise the first path segment.
func PackageName(specifier string) string {
	parts := strings.SplitN(specifier, "/", 3)
	if strings.HasPrefix(specifier, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}
