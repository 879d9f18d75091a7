package main

import (
	"fmt"
	"math/rand"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/san-kum/stepbridge/internal/client"
	"github.com/san-kum/stepbridge/internal/config"
)

type clientOptions struct {
	episodes int
	seed     int64
	maxSteps int
	start    string
	throttle float64
	manual   bool
	hover    float64
	dt       float64
	verbose  bool
	timeout  time.Duration
}

func newClientCmd() *cobra.Command {
	opts := &clientOptions{}
	cmd := &cobra.Command{
		Use:   "client [addr]",
		Short: "fly episodes against a running bridge",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := config.DefaultListen
			if len(args) > 0 {
				addr = args[0]
			}
			return runClient(cmd, addr, opts)
		},
	}

	defaults := config.DefaultConfig()
	hover := defaults.Body.Mass * defaults.Body.Gravity / defaults.Lander.ThrustPower

	f := cmd.Flags()
	f.IntVar(&opts.episodes, "episodes", 1, "number of episodes")
	f.Int64Var(&opts.seed, "seed", time.Now().UnixNano(), "random seed for start positions")
	f.IntVar(&opts.maxSteps, "max-steps", client.DefaultLimits().MaxSteps, "steps before an episode times out")
	f.StringVar(&opts.start, "start", "", "fixed start as x,y,z,pitch,yaw instead of a random one")
	f.BoolVar(&opts.manual, "manual", false, "hold a constant throttle instead of flying the autopilot")
	f.Float64Var(&opts.throttle, "throttle", 0.5, "throttle for --manual")
	f.Float64Var(&opts.hover, "hover", hover, "autopilot hover throttle")
	f.Float64Var(&opts.dt, "dt", config.DefaultDt, "bridge step the autopilot assumes")
	f.BoolVar(&opts.verbose, "verbose", false, "print every state")
	f.DurationVar(&opts.timeout, "timeout", 5*time.Second, "round trip timeout")
	return cmd
}

func parseStart(s string) (bridge.Reset, error) {
	cmd, ok := bridge.Decode("1," + s)
	if !ok || strings.Count(s, ",") != 4 {
		return bridge.Reset{}, fmt.Errorf("start must be x,y,z,pitch,yaw, got %q", s)
	}
	return cmd.Reset, nil
}

func runClient(cmd *cobra.Command, addr string, opts *clientOptions) error {
	var fixed *bridge.Reset
	if opts.start != "" {
		r, err := parseStart(opts.start)
		if err != nil {
			return err
		}
		fixed = &r
	}

	auto := client.NewAutopilot(opts.hover)
	auto.Dt = opts.dt
	var pilot client.Pilot = auto
	if opts.manual {
		throttle := opts.throttle
		pilot = client.PilotFunc(func(bridge.StateVector) bridge.Apply {
			return bridge.Apply{Thrust: throttle}
		})
	}

	limits := client.DefaultLimits()
	limits.MaxSteps = opts.maxSteps

	c, err := client.Dial(cmd.Context(), addr, opts.timeout)
	if err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	var onStep client.StepFunc
	if opts.verbose {
		onStep = func(step int, a bridge.Apply, s bridge.StateVector) {
			fmt.Fprintf(out, "%5d  %s -> %s", step, bridge.Command{Mode: bridge.ModeApply, Apply: a}, bridge.Encode(s))
		}
	}

	rng := rand.New(rand.NewSource(opts.seed))
	ranges := client.DefaultStartRange()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EPISODE\tSTART\tSTEPS\tOUTCOME\tMIN-DY\tFINAL-VY")

	outcomes := make(map[client.Outcome]int)
	for i := 1; i <= opts.episodes; i++ {
		start := ranges.Sample(rng)
		if fixed != nil {
			start = *fixed
		}
		ep, err := client.RunEpisode(cmd.Context(), c, start, pilot, limits, onStep)
		if err != nil {
			_ = w.Flush()
			return fmt.Errorf("episode %d: %w", i, err)
		}
		outcomes[ep.Outcome]++
		fmt.Fprintf(w, "%d\t(%.1f, %.1f, %.1f)\t%d\t%s\t%.2f\t%.2f\n",
			i, start.X, start.Y, start.Z, ep.Steps, ep.Outcome, ep.MinHeight, ep.Final[bridge.VY])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if opts.episodes > 1 {
		fmt.Fprintf(out, "\nsuccess rate: %.0f%% (%d/%d)\n",
			100*float64(outcomes[client.Success])/float64(opts.episodes), outcomes[client.Success], opts.episodes)
	}
	return nil
}
