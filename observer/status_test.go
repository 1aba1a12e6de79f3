package observer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMachineStartsConnected(t *testing.T) {
	m := NewStatusMachine()
	assert.Equal(t, StatusConnected, m.Current())
}

func TestStatusMachineConnectedToDegradedToHalt(t *testing.T) {
	m := NewStatusMachine()
	require.NoError(t, m.Transition(StatusDegraded))
	require.NoError(t, m.Transition(StatusHalt))
	assert.Equal(t, StatusHalt, m.Current())
}

func TestStatusMachineConnectedDirectToHalt(t *testing.T) {
	m := NewStatusMachine()
	require.NoError(t, m.Transition(StatusHalt))
}

func TestStatusMachineHaltIsTerminal(t *testing.T) {
	m := NewStatusMachine()
	require.NoError(t, m.Transition(StatusHalt))
	err := m.Transition(StatusConnected)
	require.Error(t, err)
	err = m.Transition(StatusDegraded)
	require.Error(t, err)
}

func TestStatusMachineDegradedCannotReturnToConnected(t *testing.T) {
	m := NewStatusMachine()
	require.NoError(t, m.Transition(StatusDegraded))
	err := m.Transition(StatusConnected)
	require.Error(t, err)
}

func TestStatusMachineSameStateIsNoop(t *testing.T) {
	m := NewStatusMachine()
	require.NoError(t, m.Transition(StatusConnected))
}
