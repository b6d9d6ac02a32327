package instrument

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jonwraymond/traceops/obslog"
)

func registryClients(t *testing.T) (*HTTPClient, *BrokerClient) {
	t.Helper()
	logger, _ := obslog.New(obslog.Config{Service: "test", Writer: &bytes.Buffer{}})
	h, err := NewHTTPClient(HTTPConfig{Name: "billing-api", Adapter: &fakeHTTPAdapter{}, Logger: logger})
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	b, err := NewBrokerClient(BrokerConfig{Name: "orders-bus", Adapter: &fakeBroker{}, Logger: logger})
	if err != nil {
		t.Fatalf("NewBrokerClient() error = %v", err)
	}
	return h, b
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	h, b := registryClients(t)
	r := NewRegistry()

	if err := r.RegisterHTTP(h); err != nil {
		t.Fatalf("RegisterHTTP() error = %v", err)
	}
	if err := r.RegisterBroker(b); err != nil {
		t.Fatalf("RegisterBroker() error = %v", err)
	}

	got, err := r.HTTP("billing-api")
	if err != nil || got != h {
		t.Errorf("HTTP() = %v, %v, want the registered client", got, err)
	}
	gotB, err := r.Broker("orders-bus")
	if err != nil || gotB != b {
		t.Errorf("Broker() = %v, %v, want the registered client", gotB, err)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	h, _ := registryClients(t)
	r := NewRegistry()

	_ = r.RegisterHTTP(h)
	if err := r.RegisterHTTP(h); !errors.Is(err, ErrDuplicateInstance) {
		t.Errorf("second register error = %v, want ErrDuplicateInstance", err)
	}
}

func TestRegistry_UnknownInstance(t *testing.T) {
	r := NewRegistry()

	if _, err := r.HTTP("nope"); !errors.Is(err, ErrUnknownInstance) {
		t.Errorf("HTTP() error = %v, want ErrUnknownInstance", err)
	}
	if _, err := r.Broker("nope"); !errors.Is(err, ErrUnknownInstance) {
		t.Errorf("Broker() error = %v, want ErrUnknownInstance", err)
	}
}

func TestRegistry_List(t *testing.T) {
	h, b := registryClients(t)
	r := NewRegistry()
	_ = r.RegisterHTTP(h)
	_ = r.RegisterBroker(b)

	https, brokers := r.List()
	if len(https) != 1 || https[0] != "billing-api" {
		t.Errorf("http names = %v, want [billing-api]", https)
	}
	if len(brokers) != 1 || brokers[0] != "orders-bus" {
		t.Errorf("broker names = %v, want [orders-bus]", brokers)
	}
}
