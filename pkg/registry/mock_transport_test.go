package registry

import (
	"github.com/stretchr/testify/mock"

	"flightdeck/pkg/sim"
	"flightdeck/pkg/simvar"
)

type mockTransport struct {
	mock.Mock
	listener sim.Listener
}

func (m *mockTransport) RegisterToggleEvent(id sim.EventID, name string) (uint32, bool) {
	args := m.Called(id, name)
	return args.Get(0).(uint32), args.Bool(1)
}

func (m *mockTransport) Trigger(id sim.EventID, value uint32) error {
	return m.Called(id, value).Error(0)
}

func (m *mockTransport) RegisterSimValues(regs ...simvar.Registration) {
	m.Called(regs)
}

func (m *mockTransport) DeRegisterSimValues(regs ...simvar.Registration) {
	m.Called(regs)
}

func (m *mockTransport) SetListener(l sim.Listener) {
	m.listener = l
}

func (m *mockTransport) GetState() sim.State {
	return sim.StateConnected
}

func (m *mockTransport) Close() error {
	return nil
}
