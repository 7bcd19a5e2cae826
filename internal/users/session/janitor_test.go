// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/users/permission"
	"github.com/taibuivan/helphub/internal/users/session"
	"github.com/taibuivan/helphub/internal/users/usertest"
)

func TestJanitor_Sweep(t *testing.T) {
	fixture := usertest.NewFixture(t)
	owner := fixture.CreateAccount(t, "pin.alice", "s3cret", permission.RolePIN)
	fixture.Login(t, owner)
	fixture.Login(t, owner)

	janitor := session.NewJanitor(fixture.Sessions, time.Minute, nil, usertest.Logger())

	assert.Equal(t, int64(0), janitor.Sweep(context.Background()))

	fixture.Clock.Advance(usertest.IdleTimeout)
	assert.Equal(t, int64(2), janitor.Sweep(context.Background()))
}

func TestJanitor_SweepSwallowsFailures(t *testing.T) {
	fixture := usertest.NewFixture(t)
	fixture.Store.FailWith(apperr.Persistence(errors.New("down")))

	janitor := session.NewJanitor(fixture.Sessions, time.Minute, nil, usertest.Logger())
	assert.Equal(t, int64(0), janitor.Sweep(context.Background()))
}

func TestJanitor_RunStopsOnCancel(t *testing.T) {
	fixture := usertest.NewFixture(t)
	janitor := session.NewJanitor(fixture.Sessions, time.Millisecond, nil, usertest.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
