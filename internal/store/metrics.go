package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики хранилища записей.
var (
	// recordsGauge - текущее количество записей.
	recordsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hv_records",
		Help: "Текущее количество медицинских записей в хранилище.",
	})

	// recordsSizeGauge - суммарный размер файлов записей.
	recordsSizeGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hv_records_size_bytes",
		Help: "Суммарный размер файлов всех записей в байтах.",
	})

	// opsTotal - операции изменения коллекции.
	opsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hv_record_operations_total",
			Help: "Количество операций над записями по типу и результату.",
		},
		[]string{"operation", "result"},
	)

	// loadsTotal - загрузки коллекции из источника.
	loadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hv_record_loads_total",
			Help: "Количество загрузок записей из источника по результату.",
		},
		[]string{"result"},
	)
)
