package game

// scheduleWave планирует появление волны
func (s *Simulation) scheduleWave(at float64) {
	s.sched.Schedule(at, s.spawnWave)
}

// spawnWave выпускает волну в случайных точках мира и планирует следующую
func (s *Simulation) spawnWave() {
	count := s.params.Wave.WaveSize(s.state.WaveIndex)
	s.state.WaveIndex++

	for i := 0; i < count; i++ {
		s.SpawnEnemy(s.world.RandomPoint(s.rng, s.params.Enemy.Size))
	}

	s.observer.WaveSpawned(WaveEvent{
		RunID:    s.state.RunID,
		Wave:     s.state.WaveIndex,
		Enemies:  count,
		GameTime: s.state.GameTime,
	})

	s.scheduleWave(s.state.GameTime + s.params.Wave.Interval)
}
