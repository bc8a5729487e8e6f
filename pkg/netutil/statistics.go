package netutil

import "time"

type Statistics struct {
	RxPackets uint64    `json:"rx_packets"`
	TxPackets uint64    `json:"tx_packets"`
	RxBytes   uint64    `json:"rx_bytes"`
	TxBytes   uint64    `json:"tx_bytes"`
	RxIOs     uint64    `json:"rx_ios"` // recvfrom
	TxIOs     uint64    `json:"tx_ios"` // sendto
	RxErrors  uint64    `json:"rx_errors"`
	TxErrors  uint64    `json:"tx_errors"`
	RxDropped uint64    `json:"rx_dropped"` // received but unrecognized or unmatched
	Timestamp time.Time `json:"timestamp"`  // Get statistics time
}

func (s *Statistics) AddRx(n int, err error) {
	s.RxIOs++
	if err != nil {
		s.RxErrors++
		return
	}
	s.RxPackets++
	s.RxBytes += uint64(n)
}

func (s *Statistics) AddTx(n int, err error) {
	s.TxIOs++
	if err != nil {
		s.TxErrors++
		return
	}
	s.TxPackets++
	s.TxBytes += uint64(n)
}
