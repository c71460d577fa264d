package interfaces

import "net/http"

// ApplicationContext carries the request scoped data a controller needs
// without binding it to a specific transport framework.
type ApplicationContext[T interface{}] struct {
	Ctx      interface{}
	Body     *T
	Header   http.Header
	Keys     map[string]any
	DeviceID string
}

func (ac *ApplicationContext[T]) GetHeader(key string) *string {
	if ac.Header == nil {
		return nil
	}
	value := ac.Header.Get(key)
	if value == "" {
		return nil
	}
	return &value
}
