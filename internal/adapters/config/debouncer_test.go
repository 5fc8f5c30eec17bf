package config_test

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/thingsgate/internal/adapters/config"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		calls := 0
		d := config.NewDebouncer(100*time.Millisecond, func() { calls++ })

		d.Trigger()
		time.Sleep(50 * time.Millisecond)
		d.Trigger()
		time.Sleep(50 * time.Millisecond)
		d.Trigger()

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 1, calls)
	})
}

func TestDebouncer_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		calls := 0
		d := config.NewDebouncer(100*time.Millisecond, func() { calls++ })

		d.Trigger()
		d.Stop()

		time.Sleep(200 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 0, calls)
	})
}
