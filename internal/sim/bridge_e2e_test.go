package sim_test

import (
	"bufio"
	"context"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/net/nettest"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/san-kum/stepbridge/internal/integrators"
	"github.com/san-kum/stepbridge/internal/rocket"
	"github.com/san-kum/stepbridge/internal/sim"
)

const dt = 0.02

// rig is a bridge wired to a lander over a real loopback connection.
type rig struct {
	acceptor *bridge.Acceptor
	exec     *sim.Executor
	conn     net.Conn
	reader   *bufio.Reader
	cancel   context.CancelFunc
	group    *errgroup.Group
}

func startRig(gravity float64) *rig {
	ln, err := nettest.NewLocalListener("tcp")
	Expect(err).NotTo(HaveOccurred())

	coord := bridge.NewCoordinator()
	acceptor := bridge.NewAcceptor(ln, coord)

	body := rocket.NewBody()
	body.Gravity = gravity
	lander := rocket.NewLander(body, integrators.NewRK4(), rocket.DefaultParams())
	exec, err := sim.NewExecutor(lander, dt, nil)
	Expect(err).NotTo(HaveOccurred())
	loop := sim.NewLoop(coord, exec, 100*time.Microsecond)

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return acceptor.Serve(gctx) })
	g.Go(func() error { return loop.Run(gctx) })

	conn, err := net.Dial("tcp", ln.Addr().String())
	Expect(err).NotTo(HaveOccurred())

	return &rig{
		acceptor: acceptor,
		exec:     exec,
		conn:     conn,
		reader:   bufio.NewReader(conn),
		cancel:   cancel,
		group:    g,
	}
}

func (r *rig) send(line string) bridge.StateVector {
	GinkgoHelper()
	Expect(r.conn.SetDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
	_, err := r.conn.Write([]byte(line + "\n"))
	Expect(err).NotTo(HaveOccurred())
	resp, err := r.reader.ReadString('\n')
	Expect(err).NotTo(HaveOccurred())
	s, err := bridge.ParseState(resp)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func (r *rig) stop() {
	_ = r.conn.Close()
	r.cancel()
	Expect(r.acceptor.Shutdown(time.Second)).To(Succeed())
	Expect(r.group.Wait()).To(Succeed())
}

var _ = Describe("Bridge driving a lander", func() {
	var r *rig

	AfterEach(func() {
		r.stop()
	})

	Context("without gravity", func() {
		BeforeEach(func() {
			r = startRig(0)
		})

		It("reports a motionless body after reset and an idle step", func() {
			s := r.send("1,0,10,0,0,0")
			Expect(s.Velocity()).To(Equal([3]float64{0, 0, 0}))
			Expect(s.AngularVelocity()).To(Equal([3]float64{0, 0, 0}))
			Expect(s[bridge.DY]).To(BeNumerically("~", 8, 1e-12))

			s = r.send("0,0,0,0,0")
			Expect(s.Velocity()).To(Equal([3]float64{0, 0, 0}))
			Expect(s.AngularVelocity()).To(Equal([3]float64{0, 0, 0}))
			Expect(s[bridge.DY]).To(BeNumerically("~", 8, 1e-12))
			Expect(s[bridge.QW]).To(BeNumerically("~", 1, 1e-12))
		})

		It("reports target minus body horizontally", func() {
			s := r.send("1,3,10,-4,0,0")
			Expect(s[bridge.DX]).To(BeNumerically("~", -3, 1e-12))
			Expect(s[bridge.DZ]).To(BeNumerically("~", 4, 1e-12))
		})

		It("turns under a yaw command", func() {
			r.send("1,0,10,0,0,0")
			s := r.send("0,0,1,0,0")
			Expect(s[bridge.WY]).To(BeNumerically(">", 0))
			Expect(s[bridge.WX]).To(BeNumerically("~", 0, 1e-12))
		})
	})

	Context("under default gravity", func() {
		BeforeEach(func() {
			r = startRig(rocket.DefaultGravity)
		})

		It("falls for exactly one step per request", func() {
			r.send("1,0,10,0,0,0")
			s := r.send("0,0,0,0,0")
			Expect(s[bridge.VY]).To(BeNumerically("~", -rocket.DefaultGravity*dt, 1e-9))
			Expect(r.exec.Steps()).To(Equal(2))
		})

		It("answers every request in order", func() {
			r.send("1,0,1000,0,0,0")
			prev := r.send("0,0,0,0,0")
			for i := 0; i < 100; i++ {
				s := r.send("0,0,0,0,0")
				Expect(s[bridge.DY]).To(BeNumerically("<", prev[bridge.DY]))
				Expect(s[bridge.VY]).To(BeNumerically("<", prev[bridge.VY]))
				prev = s
			}
			Expect(r.exec.Steps()).To(Equal(102))
		})

		It("clamps throttle above one", func() {
			r.send("1,0,10,0,0,0")
			full := r.send("0,0,0,1,0")
			r.send("1,0,10,0,0,0")
			over := r.send("0,0,0,5,0")
			Expect(over[bridge.VY]).To(BeNumerically("~", full[bridge.VY], 1e-12))
			Expect(full[bridge.VY]).To(BeNumerically(">", 0))
		})

		It("zeroes velocity on reset", func() {
			r.send("1,0,10,0,0,0")
			for i := 0; i < 10; i++ {
				r.send("0,0.5,0,1,0")
			}
			s := r.send("1,0,10,0,0,0")
			Expect(s.Velocity()).To(Equal([3]float64{0, 0, 0}))
			Expect(s.AngularVelocity()).To(Equal([3]float64{0, 0, 0}))
			Expect(r.exec.Episodes()).To(Equal(2))
		})

		It("answers an undecodable line with the current state", func() {
			r.send("1,0,10,0,0,0")
			before := r.send("0,0,0,0,0")
			after := r.send("hello")
			Expect(after).To(Equal(before))
			Expect(r.exec.Dropped()).To(Equal(1))
		})

		It("keeps the body above ground", func() {
			r.send("1,0,2.5,0,0,0")
			var s bridge.StateVector
			for i := 0; i < 100; i++ {
				s = r.send("0,0,0,0,0")
			}
			Expect(s[bridge.DY]).To(BeNumerically(">=", -1e-9))
			Expect(s[bridge.VY]).To(BeNumerically("~", 0, 1e-9))
		})
	})
})
