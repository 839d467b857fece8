package e2e

import (
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartProcessReapsExitedProcess(t *testing.T) {
	self, err := os.Executable()
	require.NoError(t, err)

	var proc *process
	t.Run("exits", func(t *testing.T) {
		proc = startProcess(t, exec.Command(self, "-test.run=^$"))
		require.NoError(t, proc.wait(10*time.Second))
	})

	assert.NoError(t, proc.wait(time.Millisecond))
}

func TestStartProcessKillsRunningProcessAtCleanup(t *testing.T) {
	self, err := os.Executable()
	require.NoError(t, err)

	var proc *process
	t.Run("running", func(t *testing.T) {
		cmd := exec.Command(self, "-test.run=^TestHelperSleep$")
		cmd.Env = append(os.Environ(), "LA_E2E_SLEEP=1")
		proc = startProcess(t, cmd)
		assert.Error(t, proc.wait(50*time.Millisecond))
	})

	select {
	case <-proc.exited:
	default:
		t.Fatal("process still running after cleanup")
	}
}

func TestHelperSleep(t *testing.T) {
	if os.Getenv("LA_E2E_SLEEP") == "" {
		t.Skip("helper process only")
	}
	time.Sleep(time.Minute)
}
