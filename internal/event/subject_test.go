package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectDeliversInRegistrationOrder(t *testing.T) {
	s := NewSubject[int]()

	var order []string
	s.Subscribe(func(int) { order = append(order, "first") })
	s.Subscribe(func(int) { order = append(order, "second") })
	s.Subscribe(func(int) { order = append(order, "third") })

	s.Publish(1)

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestSubjectUnsubscribeStopsDelivery(t *testing.T) {
	s := NewSubject[string]()

	var got []string
	unsubscribe := s.Subscribe(func(v string) { got = append(got, v) })

	s.Publish("a")
	unsubscribe()
	s.Publish("b")

	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, 0, s.Len())
}

func TestSubjectUnsubscribeTwiceIsNoop(t *testing.T) {
	s := NewSubject[int]()

	unsubscribe := s.Subscribe(func(int) {})
	other := s.Subscribe(func(int) {})

	unsubscribe()
	unsubscribe()

	assert.Equal(t, 1, s.Len())
	_ = other
}

func TestSubjectPanickingHandlerDoesNotBlockOthers(t *testing.T) {
	s := NewSubject[int]()

	delivered := false
	s.Subscribe(func(int) { panic("boom") })
	s.Subscribe(func(int) { delivered = true })

	s.Publish(42)

	assert.True(t, delivered)
}

func TestSubjectSubscribeDuringPublishTakesEffectNextTime(t *testing.T) {
	s := NewSubject[int]()

	count := 0
	s.Subscribe(func(int) {
		if count == 0 {
			s.Subscribe(func(int) { count += 10 })
		}
		count++
	})

	s.Publish(1)
	assert.Equal(t, 1, count)

	s.Publish(2)
	assert.Equal(t, 12, count)
}
