package config

import "strings"

// SourceKind classifies the --input URI per §6: "-" is stdin/file mode,
// tcp://, udp:// select a network source, anything else is a file path.
type SourceKind int

const (
	SourceFile SourceKind = iota
	SourceStdin
	SourceTCP
	SourceUDP
)

// ClassifyInput dispatches the --input value and, for network sources,
// returns the host:port to bind.
func ClassifyInput(input string) (SourceKind, string) {
	switch {
	case input == "" || input == "-":
		return SourceStdin, ""
	case strings.HasPrefix(input, "tcp://"):
		return SourceTCP, strings.TrimPrefix(input, "tcp://")
	case strings.HasPrefix(input, "udp://"):
		return SourceUDP, strings.TrimPrefix(input, "udp://")
	default:
		return SourceFile, input
	}
}

// OutputKind classifies the --output value the same way SourceKind
// classifies --input: a URI scheme picks the sink, everything else is
// a file path (or stdout).
type OutputKind int

const (
	OutputFile OutputKind = iota
	OutputStdout
	OutputDB
)

// ClassifyOutput dispatches the --output value. "db://<driver>/<dsn>"
// selects the native database sink (§4.6), with everything after the
// driver name passed through verbatim as the driver's DSN — e.g.
// "db://sqlite3//tmp/hustlog.db" connects the sqlite3 driver to
// "/tmp/hustlog.db". Anything else is a file path for the CSV/SQL-text
// sinks, with "-" or "" meaning stdout, matching ClassifyInput's stdin
// convention.
func ClassifyOutput(output string) (kind OutputKind, driver, dsn string) {
	switch {
	case output == "" || output == "-":
		return OutputStdout, "", ""
	case strings.HasPrefix(output, "db://"):
		rest := strings.TrimPrefix(output, "db://")
		driver, dsn, _ = strings.Cut(rest, "/")
		return OutputDB, driver, dsn
	default:
		return OutputFile, "", output
	}
}
