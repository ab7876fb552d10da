package health

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/irenemg8/chatbot-sub001/internal/audit"
	"github.com/irenemg8/chatbot-sub001/internal/config"
)

// Checker self-checks that the audit subsystem is healthy. Every failed
// sub-check is degraded to a reported problem string; no check
// short-circuits the rest and none is fatal.
type Checker struct {
	cfg *config.Config
	log *audit.Writer
	now func() time.Time
}

// NewChecker builds a checker over the configuration and audit writer.
func NewChecker(cfg *config.Config, log *audit.Writer) *Checker {
	return &Checker{cfg: cfg, log: log, now: time.Now}
}

// CheckHealth runs every sub-check and collects the problems found. An
// empty result means healthy.
func (c *Checker) CheckHealth() []string {
	var problems []string

	problems = append(problems, c.cfg.Validate()...)

	info, err := os.Stat(c.log.Root())
	switch {
	case os.IsNotExist(err):
		problems = append(problems, fmt.Sprintf("audit root %s does not exist", c.log.Root()))
	case err != nil:
		problems = append(problems, fmt.Sprintf("audit root %s is not accessible: %v", c.log.Root(), err))
	case !info.IsDir():
		problems = append(problems, fmt.Sprintf("audit root %s is not a directory", c.log.Root()))
	}

	// Today's partition missing once traffic has flowed suggests a
	// write failure.
	today := c.log.DayFile(c.now())
	if _, err := os.Stat(today); os.IsNotExist(err) {
		problems = append(problems, fmt.Sprintf("today's audit file %s does not exist (possible write failure)", today))
	}

	if free, err := freeDiskBytes(c.log.Root()); err != nil {
		problems = append(problems, fmt.Sprintf("cannot determine free disk space: %v", err))
	} else if free < c.cfg.MinFreeDiskBytes {
		problems = append(problems, fmt.Sprintf("free disk space %d MB is below the %d MB minimum",
			free/(1024*1024), c.cfg.MinFreeDiskBytes/(1024*1024)))
	}

	return problems
}

func freeDiskBytes(path string) (uint64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
