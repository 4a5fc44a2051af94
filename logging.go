package busanim

import "github.com/theoremus-urban-solutions/bus-route-animator/internal"

// InitLogging sends timestamped log lines to stdout
func InitLogging() {
	internal.InitLogging()
}
