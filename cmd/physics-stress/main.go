package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/annel0/trile-physics/internal/camera"
	"github.com/annel0/trile-physics/internal/collision"
	"github.com/annel0/trile-physics/internal/config"
	"github.com/annel0/trile-physics/internal/entity"
	"github.com/annel0/trile-physics/internal/level"
	"github.com/annel0/trile-physics/internal/logging"
	"github.com/annel0/trile-physics/internal/physics"
	"github.com/annel0/trile-physics/internal/sim"
	"github.com/annel0/trile-physics/internal/vec"
	"github.com/annel0/trile-physics/internal/world"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config path (defaults to $TRILE_CONFIG)")
		actors     = flag.Int("actors", 0, "Number of wandering players (overrides config)")
		ticks      = flag.Int("ticks", 0, "Number of ticks (overrides config)")
		platforms  = flag.Int("platforms", 4, "Number of moving platforms")
		realtime   = flag.Bool("realtime", false, "Pace ticks at the configured tick rate")
	)
	flag.Parse()

	if err := logging.InitDefaultLogger("stress"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *actors > 0 {
		cfg.Stress.Actors = *actors
	}
	if *ticks > 0 {
		cfg.Stress.Ticks = *ticks
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	size := vec.Vec3{X: cfg.Stress.Width, Y: cfg.Stress.Height, Z: cfg.Stress.Depth}
	lvl, err := level.Generate("stress", world.StandardSet(), world.NewLevelGenerator(cfg.Stress.Seed, size))
	if err != nil {
		log.Fatalf("❌ Ошибка генерации уровня: %v", err)
	}

	cam := camera.New(world.ViewpointFront, cfg.Sim.RotationTicks)
	engine := collision.NewEngine(lvl, collision.NewMetrics(reg))
	integrator := physics.NewIntegrator(engine, cam, lvl, cfg.Physics, physics.NewMetrics(reg))
	simulation := sim.New(integrator, cam, lvl, cfg.Sim, sim.NewMetrics(reg))

	applyLogLevels(cfg.Logging)

	if err := populate(simulation, lvl, cfg.Stress, *platforms); err != nil {
		log.Fatalf("❌ Ошибка размещения сущностей: %v", err)
	}

	if port := cfg.Stress.GetMetricsPort(); port > 0 {
		addr := fmt.Sprintf(":%d", port)
		go func() {
			logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(addr, mux); err != nil {
				logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info("🎮 Стресс-тест: уровень %v, %d трайлов, %d игроков, %d тиков",
		size, lvl.Grid().Len(), cfg.Stress.Actors, cfg.Stress.Ticks)

	start := time.Now()
	if err := run(ctx, simulation, cam, cfg, *realtime); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error("❌ Ошибка симуляции: %v", err)
	}
	elapsed := time.Since(start)

	report(simulation.Tick(), elapsed)
}

// run гоняет симуляцию пачками между поворотами камеры
func run(ctx context.Context, s *sim.Simulation, cam *camera.Camera, cfg *config.Config, realtime bool) error {
	remaining := cfg.Stress.Ticks
	batch := cfg.Stress.RotateEvery
	if batch <= 0 {
		batch = remaining
	}

	for remaining > 0 {
		n := min(batch, remaining)
		var err error
		if realtime {
			err = s.RunRealtime(ctx, n)
		} else {
			err = s.Run(ctx, n)
		}
		if err != nil {
			return err
		}
		remaining -= n

		if err := cam.RotateCW(); err != nil {
			logging.Debug("Поворот пропущен: %v", err)
		}
	}
	return nil
}

// populate расставляет блуждающих игроков над рельефом и платформы-лифты
func populate(s *sim.Simulation, lvl *level.Level, cfg config.StressConfig, platforms int) error {
	rng := rand.New(rand.NewSource(cfg.Seed))
	spawnY := float64(cfg.Height) + entity.PlayerSize.Y

	for i := 0; i < platforms; i++ {
		cell := vec.Vec3{X: rng.Intn(max(1, cfg.Width)), Y: cfg.Height + 2 + i, Z: rng.Intn(max(1, cfg.Depth))}
		t, err := lvl.Place(world.SolidTrileID, cell)
		if err != nil {
			return fmt.Errorf("platform %d: %w", i, err)
		}
		a, err := entity.NewTrileActor(uint64(1_000_000+i), lvl.Grid(), t, world.TrilePhysicsState{})
		if err != nil {
			return err
		}
		center := t.Center()
		a.FollowPath(0.05, center.Add(vec.Vec3Float{X: 4}), center)
		s.Add(a)
	}

	for i := 0; i < cfg.Actors; i++ {
		center := vec.Vec3Float{
			X: float64(rng.Intn(max(1, cfg.Width))) + 0.5,
			Y: spawnY,
			Z: float64(rng.Intn(max(1, cfg.Depth))) + 0.5,
		}
		p := entity.NewPlayer(uint64(i+1), center)
		p.SetState(entity.NewIdleState(p))
		s.Add(p)
	}
	return nil
}

func applyLogLevels(cfg config.LoggingConfig) {
	console, err := logging.ParseLevel(cfg.ConsoleLevel)
	if err != nil {
		logging.Warn("Уровень консоли: %v", err)
	}
	file, err := logging.ParseLevel(cfg.FileLevel)
	if err != nil {
		logging.Warn("Уровень файла: %v", err)
	}

	manager := logging.GetLoggerManager()
	manager.SetAllLevels(console, file)
	logging.Default().SetLevels(console, file)
	logging.Debug("Уровни логов применены к компонентам: %v", manager.ListComponents())
}

func report(ticks uint64, elapsed time.Duration) {
	perTick := time.Duration(0)
	if ticks > 0 {
		perTick = elapsed / time.Duration(ticks)
	}
	logging.Info("⏱  %d тиков за %v (%v на тик)", ticks, elapsed, perTick)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	logging.Info("💾 Память: alloc %.1f MB, sys %.1f MB, GC %d", float64(m.Alloc)/1024/1024, float64(m.Sys)/1024/1024, m.NumGC)

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logging.Warn("Статистика процесса недоступна: %v", err)
		return
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		logging.Info("🧮 CPU процесса: %.1f%%", cpu)
	}
	if mem, err := proc.MemoryInfo(); err == nil {
		logging.Info("📦 RSS: %.1f MB", float64(mem.RSS)/1024/1024)
	}
}
