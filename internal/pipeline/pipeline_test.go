package pipeline

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nutshell/internal/frame"
	"github.com/san-kum/nutshell/internal/reverb"
)

var _ = Describe("Config", func() {
	It("rejects a missing producer", func() {
		_, err := New(nil, Config{Lookahead: 1, DisplayInterval: time.Second})
		Expect(err).To(MatchError(ErrNoSource))
	})

	It("rejects a zero lookahead", func() {
		_, err := New(newFakeProducer(4, 1), Config{DisplayInterval: time.Second})
		Expect(errors.Is(err, ErrLookahead)).To(BeTrue())
	})

	It("rejects a zero display interval", func() {
		_, err := New(newFakeProducer(4, 1), Config{Lookahead: 2})
		Expect(errors.Is(err, ErrInterval)).To(BeTrue())
	})

	It("splits a frame evenly between its snapshots", func() {
		Expect(Interval(16*time.Second, 32)).To(Equal(500 * time.Millisecond))
		Expect(Interval(time.Second, 0)).To(Equal(time.Second))
	})
})

var _ = Describe("Pipeline", func() {
	var (
		producer *fakeProducer
		rec      *recorder
		p        *Pipeline
		opts     []Option
		cfg      Config
	)

	BeforeEach(func() {
		producer = newFakeProducer(8, 2)
		rec = &recorder{}
		cfg = Config{Lookahead: 2, DisplayInterval: 10 * time.Millisecond}
		opts = nil
	})

	start := func() {
		var err error
		p, err = New(producer, cfg, append([]Option{WithObserver(rec)}, opts...)...)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Start(context.Background())).To(Succeed())
		DeferCleanup(func() {
			if producer.release != nil {
				select {
				case <-producer.release:
				default:
					close(producer.release)
				}
			}
			_ = p.Close()
		})
	}

	It("refuses to start twice", func() {
		start()
		Expect(p.Start(context.Background())).To(MatchError(ErrStarted))
	})

	It("plays frames in production order across buffer boundaries", func() {
		start()
		var played []float32
		buf := make([]float32, 6)
		for range 8 {
			p.Audio().Fill(buf)
			played = append(played, buf...)
		}
		Expect(played).To(HaveLen(48))
		for i, v := range played {
			Expect(v).To(Equal(float32(i/8+1)), "sample %d", i)
		}
		Expect(p.Audio().State()).To(Equal(StateHasFrame))
	})

	It("never sends two NeedFrame messages without a FrameSent between them", func() {
		start()
		buf := make([]float32, 5)
		for range 20 {
			p.Audio().Fill(buf)
		}

		events := rec.Events()
		Expect(events).NotTo(BeEmpty())
		Expect(events[0].msg).To(Equal(NeedFrame))
		outstanding := false
		var nextIndex uint64
		for _, e := range events {
			switch e.msg {
			case NeedFrame:
				Expect(outstanding).To(BeFalse(), "second NeedFrame before a frame arrived")
				outstanding = true
			case FrameSent:
				Expect(outstanding).To(BeTrue())
				Expect(e.index).To(Equal(nextIndex))
				nextIndex++
				outstanding = false
			}
		}
	})

	It("keeps lookahead frames ready and no more", func() {
		cfg.Lookahead = 3
		start()
		Eventually(func() uint64 { return p.Stats().FramesProduced }).Should(Equal(uint64(3)))
		Consistently(func() uint64 { return p.Stats().FramesProduced }, 50*time.Millisecond).Should(Equal(uint64(3)))

		p.Audio().Fill(make([]float32, 8))
		Eventually(func() uint64 { return p.Stats().FramesProduced }).Should(Equal(uint64(4)))
	})

	It("holds a single frame with a lookahead of one", func() {
		cfg.Lookahead = 1
		start()
		Eventually(func() uint64 { return p.Stats().FramesProduced }).Should(Equal(uint64(1)))
		Consistently(func() uint64 { return p.Stats().FramesProduced }, 50*time.Millisecond).Should(Equal(uint64(1)))
	})

	It("recycles played audio buffers", func() {
		start()
		buf := make([]float32, 8)
		p.Audio().Fill(buf)
		p.Audio().Fill(buf)
		Expect(producer.recycled.Load()).To(Equal(int64(1)))
		Expect(p.Stats().FramesPlayed).To(Equal(uint64(1)))
	})

	It("replaces unread video instead of blocking", func() {
		start()
		buf := make([]float32, 8)
		for range 3 {
			p.Audio().Fill(buf)
		}
		Expect(p.Stats().DroppedVideo).To(Equal(uint64(2)))

		sample, redraw := p.Display().Tick(time.Now())
		Expect(redraw).To(BeTrue())
		Expect(sample.Width).To(Equal(2))
	})

	It("counts starvation when the producer is slow", func() {
		producer.delay = 20 * time.Millisecond
		cfg.Lookahead = 1
		start()
		buf := make([]float32, 8)
		for range 3 {
			p.Audio().Fill(buf)
		}
		Expect(p.Stats().Starved).To(BeNumerically(">=", 1))
		Expect(p.Stats().LastProduction).To(BeNumerically(">=", 0))
	})

	It("does not count the wait for the first frame as starvation", func() {
		producer.delay = 20 * time.Millisecond
		start()
		p.Audio().Fill(make([]float32, 8))
		Expect(p.Stats().FramesProduced).To(BeNumerically(">=", 1))
		Expect(p.Stats().Starved).To(BeZero())
	})

	It("writes silence once closed", func() {
		producer.release = make(chan struct{})
		start()

		done := make(chan []float32)
		go func() {
			defer GinkgoRecover()
			buf := []float32{9, 9, 9, 9}
			p.Audio().Fill(buf)
			done <- buf
		}()
		Eventually(p.Audio().State).Should(Equal(StateWaitingForFrame))

		closed := make(chan error)
		go func() { closed <- p.Close() }()

		var buf []float32
		Eventually(done).Should(Receive(&buf))
		Expect(buf).To(Equal([]float32{0, 0, 0, 0}))

		close(producer.release)
		Eventually(closed).Should(Receive(BeNil()))
		Eventually(p.Done()).Should(BeClosed())
	})

	It("recovers from a broken frame with silence and keeps playing", func() {
		producer.nilAt = 0
		start()

		buf := []float32{9, 9}
		p.Audio().Fill(buf)
		Expect(buf).To(Equal([]float32{0, 0}))
		Expect(p.Stats().Faults).To(Equal(uint64(1)))

		p.Audio().Fill(buf)
		Expect(buf).To(Equal([]float32{2, 2}))
	})

	It("stops and reports production errors", func() {
		producer.failAt = 1
		start()

		err := p.Wait()
		Expect(errors.Is(err, ErrProduce)).To(BeTrue())
		Expect(errors.Is(err, errBroken)).To(BeTrue())
		Expect(p.Done()).To(BeClosed())

		buf := []float32{9, 9, 9, 9}
		p.Audio().Fill(buf)
		Expect(buf).To(HaveEach(float32(0)))
	})

	It("cancels bound contexts when production fails", func() {
		producer.failAt = 0
		start()
		ctx, cancel := p.Bind(context.Background())
		defer cancel()

		Eventually(ctx.Done()).Should(BeClosed())
		Expect(errors.Is(p.Wait(), ErrProduce)).To(BeTrue())
	})

	It("leaves bound contexts alone while running", func() {
		start()
		ctx, cancel := p.Bind(context.Background())
		Consistently(ctx.Done(), 30*time.Millisecond).ShouldNot(BeClosed())
		cancel()
		Expect(ctx.Err()).To(MatchError(context.Canceled))
	})

	It("runs the reverb over every filled buffer", func() {
		engine, err := reverb.New(reverb.Config{Taps: 1, Length: 1, FirstAmplitude: 1, Wet: 1})
		Expect(err).NotTo(HaveOccurred())
		opts = []Option{WithReverb(engine)}
		start()

		// a unity echo pins the output at the first frame's level
		p.Audio().Fill(make([]float32, 8))
		buf := make([]float32, 4)
		p.Audio().Fill(buf)
		Expect(buf).To(Equal([]float32{1, 1, 1, 1}))
	})
})

var _ = Describe("DisplayUnit", func() {
	var (
		video chan *frame.VideoFrame
		d     *DisplayUnit
		t0    time.Time
	)

	videoFrame := func(widths ...int) *frame.VideoFrame {
		v := &frame.VideoFrame{}
		for _, w := range widths {
			v.Samples = append(v.Samples, frame.VideoSample{Width: w})
		}
		return v
	}

	BeforeEach(func() {
		video = make(chan *frame.VideoFrame, 1)
		d = &DisplayUnit{video: video, interval: 100 * time.Millisecond, stats: &Stats{}}
		t0 = time.Unix(1000, 0)
	})

	It("shows nothing before the first video frame", func() {
		sample, redraw := d.Tick(t0)
		Expect(sample).To(BeNil())
		Expect(redraw).To(BeFalse())
		Expect(d.State()).To(Equal(StateWaitingForFrame))
	})

	It("paces snapshots and holds the last one while starved", func() {
		video <- videoFrame(1, 2)

		sample, redraw := d.Tick(t0)
		Expect(redraw).To(BeTrue())
		Expect(sample.Width).To(Equal(1))

		sample, redraw = d.Tick(t0.Add(50 * time.Millisecond))
		Expect(redraw).To(BeFalse())
		Expect(sample.Width).To(Equal(1))

		sample, redraw = d.Tick(t0.Add(100 * time.Millisecond))
		Expect(redraw).To(BeTrue())
		Expect(sample.Width).To(Equal(2))

		sample, redraw = d.Tick(t0.Add(150 * time.Millisecond))
		Expect(redraw).To(BeFalse())
		Expect(sample.Width).To(Equal(2))

		sample, redraw = d.Tick(t0.Add(200 * time.Millisecond))
		Expect(redraw).To(BeFalse())
		Expect(sample.Width).To(Equal(2))
		Expect(d.stats.Snapshot().DisplayStarved).To(Equal(uint64(1)))

		video <- videoFrame(3)
		sample, redraw = d.Tick(t0.Add(250 * time.Millisecond))
		Expect(redraw).To(BeTrue())
		Expect(sample.Width).To(Equal(3))
		Expect(d.State()).To(Equal(StateHasFrame))
	})

	It("catches up after a late tick without bursting", func() {
		video <- videoFrame(1, 2, 3)
		d.Tick(t0)

		_, redraw := d.Tick(t0.Add(time.Second))
		Expect(redraw).To(BeTrue())
		_, redraw = d.Tick(t0.Add(time.Second + time.Millisecond))
		Expect(redraw).To(BeFalse())
	})
})
