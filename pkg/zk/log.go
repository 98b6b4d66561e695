package zk

import "github.com/sirupsen/logrus"

// Logger receives rejected proofs at debug level and aborted provers at warn level.
// It defaults to the logrus standard logger; callers may replace it.
var Logger *logrus.Logger

func init() {
	Logger = logrus.StandardLogger()
}
