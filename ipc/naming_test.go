package ipc

import "testing"

func TestDeriveNames(t *testing.T) {
	n := deriveNames("test_controller")
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"controllerSent", n.controllerSent, "/test_controller_con_sent"},
		{"childReceived", n.childReceived, "/test_controller_child_recv"},
		{"childSent", n.childSent, "/test_controller_child_sent"},
		{"controllerReceived", n.controllerReceived, "/test_controller_con_recv"},
		{"body", n.body, "/test_controller_fd_message_fd_name"},
		{"size", n.size, "/test_controller_fd_message_size"},
		{"typ", n.typ, "/test_controller_fd_message_type"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, c.got, c.want)
		}
	}
}

func TestDeriveNamesDeterministic(t *testing.T) {
	a := deriveNames("chan-a")
	b := deriveNames("chan-a")
	if a != b {
		t.Errorf("deriveNames must be a pure function of channel name: %+v != %+v", a, b)
	}
}

func TestNamesAllCount(t *testing.T) {
	n := deriveNames("x")
	if got := len(n.all()); got != 7 {
		t.Errorf("expected 7 derived names, got %d", got)
	}
}

func TestRoleString(t *testing.T) {
	if Controller.String() != "controller" {
		t.Errorf("Controller.String() = %q", Controller.String())
	}
	if Child.String() != "child" {
		t.Errorf("Child.String() = %q", Child.String())
	}
}
