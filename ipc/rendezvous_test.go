//go:build (linux || darwin) && cgo

package ipc

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/arobinson/mpichan/ipc/sem"
	"github.com/arobinson/mpichan/ipc/shm"
)

func TestRendezvous(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ipc rendezvous suite")
}

// buildPair wires up a controller and a child Endpoint against the same
// derived names directly -- skipping Open/Attach's launch.Spawn and
// handshake wait, which belong to a higher-level integration test -- so that
// Send/Recv's locking and shared-memory plumbing can be exercised in one
// process without spawning a worker group.
func buildPair(channelName string) (controller, child *Endpoint, cleanup func()) {
	n := deriveNames(channelName)

	mk := func(name string) *sem.Semaphore {
		s, err := sem.CreateOrOpen(name, 0)
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	conSent := mk(n.controllerSent)
	childRecv := mk(n.childReceived)
	childSent := mk(n.childSent)
	conRecv := mk(n.controllerReceived)

	body, err := shm.Open(n.body, true)
	Expect(err).NotTo(HaveOccurred())
	sizeCell, err := shm.OpenCell(n.size, true)
	Expect(err).NotTo(HaveOccurred())
	typeCell, err := shm.OpenCell(n.typ, true)
	Expect(err).NotTo(HaveOccurred())

	controller = &Endpoint{
		channelName: channelName, role: Controller, names: n,
		mySent: conSent, peerReceived: childRecv, peerSent: childSent, myReceived: conRecv,
		body: body, sizeCell: sizeCell, typeCell: typeCell,
	}
	child = &Endpoint{
		channelName: channelName, role: Child, names: n,
		mySent: childSent, peerReceived: conRecv, peerSent: conSent, myReceived: childRecv,
		body: body, sizeCell: sizeCell, typeCell: typeCell,
	}

	cleanup = func() {
		for _, s := range []*sem.Semaphore{conSent, childRecv, childSent, conRecv} {
			s.Close()
		}
		sem.Unlink(n.controllerSent)
		sem.Unlink(n.childReceived)
		sem.Unlink(n.childSent)
		sem.Unlink(n.controllerReceived)
		body.Close()
		shm.Unlink(n.body)
		shm.Unlink(n.size)
		shm.Unlink(n.typ)
	}
	return controller, child, cleanup
}

var _ = Describe("Send/Recv rendezvous", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		shm.SetDir(tmpDir)
	})

	It("delivers a message from controller to child", func() {
		controller, child, cleanup := buildPair("rendezvous-basic")
		defer cleanup()

		payload := []byte("hello worker group")
		done := make(chan error, 1)
		go func() { done <- controller.Send(payload, TypeBytes) }()

		got, tag, err := child.Recv()
		Expect(err).NotTo(HaveOccurred())
		Expect(<-done).NotTo(HaveOccurred())
		Expect(got).To(Equal(payload))
		Expect(tag).To(Equal(TypeBytes))
	})

	It("supports a zero-length message", func() {
		controller, child, cleanup := buildPair("rendezvous-empty")
		defer cleanup()

		done := make(chan error, 1)
		go func() { done <- controller.Send(nil, TypeInt) }()

		got, tag, err := child.Recv()
		Expect(err).NotTo(HaveOccurred())
		Expect(<-done).NotTo(HaveOccurred())
		Expect(got).To(BeEmpty())
		Expect(tag).To(Equal(TypeInt))
	})

	It("round-trips in both directions serially", func() {
		controller, child, cleanup := buildPair("rendezvous-bidi")
		defer cleanup()

		toChild := []byte("request")
		toController := []byte("response")

		done := make(chan error, 1)
		go func() { done <- controller.Send(toChild, TypeBytes) }()
		got, _, err := child.Recv()
		Expect(err).NotTo(HaveOccurred())
		Expect(<-done).NotTo(HaveOccurred())
		Expect(got).To(Equal(toChild))

		go func() { done <- child.Send(toController, TypeBytes) }()
		got, _, err = controller.Recv()
		Expect(err).NotTo(HaveOccurred())
		Expect(<-done).NotTo(HaveOccurred())
		Expect(got).To(Equal(toController))
	})

	It("blocks Recv until a send arrives", func() {
		controller, child, cleanup := buildPair("rendezvous-blocks")
		defer cleanup()

		recvDone := make(chan struct{})
		go func() {
			_, _, err := child.Recv()
			Expect(err).NotTo(HaveOccurred())
			close(recvDone)
		}()

		select {
		case <-recvDone:
			Fail("Recv returned before any Send")
		case <-time.After(50 * time.Millisecond):
		}

		Expect(controller.Send([]byte("late"), TypeBytes)).To(Succeed())
		Eventually(recvDone, time.Second).Should(BeClosed())
	})
})
