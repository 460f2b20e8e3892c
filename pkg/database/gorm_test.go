package database

import (
	"testing"
	"time"
)

func TestWithPoolDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   PoolConfig
		want PoolConfig
	}{
		{
			name: "zero config gets all defaults",
			in:   PoolConfig{},
			want: DefaultPoolConfig(),
		},
		{
			name: "explicit bounds are kept",
			in:   PoolConfig{MaxIdleConns: 2, MaxOpenConns: 20, ConnMaxLifetime: 10 * time.Minute},
			want: PoolConfig{MaxIdleConns: 2, MaxOpenConns: 20, ConnMaxLifetime: 10 * time.Minute},
		},
		{
			name: "partial config fills the rest",
			in:   PoolConfig{MaxOpenConns: 50},
			want: PoolConfig{MaxIdleConns: 10, MaxOpenConns: 50, ConnMaxLifetime: time.Hour},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withPoolDefaults(tt.in); got != tt.want {
				t.Errorf("withPoolDefaults(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
