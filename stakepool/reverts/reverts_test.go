// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRevertClasses(t *testing.T) {
	tests := []struct {
		err   *ErrRevert
		class Class
		name  string
	}{
		{Validation("stake amount must be greater than zero"), ClassValidation, "validation"},
		{State("no stake in cooldown"), ClassState, "state"},
		{Authorization("caller is not admin"), ClassAuthorization, "authorization"},
		{Arithmetic("total staked overflow"), ClassArithmetic, "arithmetic"},
		{Emergency("proposal has expired"), ClassEmergency, "emergency"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.class, tt.err.Class())
		assert.Equal(t, tt.name, tt.err.Class().String())
	}
}

func TestIsRevertErr(t *testing.T) {
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr("not an error"))
	assert.False(t, IsRevertErr(fmt.Errorf("plain error")))
	assert.True(t, IsRevertErr(Validation("zero amount")))
	assert.True(t, IsRevertErr(errors.Wrap(State("pool paused"), "stake")))
}

func TestClassOf(t *testing.T) {
	class, ok := ClassOf(errors.Wrap(Arithmetic("underflow"), "settle"))
	assert.True(t, ok)
	assert.Equal(t, ClassArithmetic, class)

	_, ok = ClassOf(errors.New("io failure"))
	assert.False(t, ok)
}
