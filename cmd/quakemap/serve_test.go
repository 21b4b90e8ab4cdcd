package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitLoaded_ReturnsWhenLoaderFinishes(t *testing.T) {
	loaded := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(loaded)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.True(t, waitLoaded(ctx, loaded))
}

func TestWaitLoaded_BoundedByShutdownDeadline(t *testing.T) {
	loaded := make(chan struct{})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	assert.False(t, waitLoaded(ctx, loaded))
	assert.Less(t, time.Since(start), time.Second)
}
