/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package hk_test

import (
	"sync/atomic"
	"time"

	"github.com/arobinson/mpichan/hk"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Housekeeper", func() {
	It("fires a registered job repeatedly", func() {
		var n int32
		hk.Reg("spec-repeat", func() time.Duration {
			atomic.AddInt32(&n, 1)
			return 10 * time.Millisecond
		}, 10*time.Millisecond)
		defer hk.UnregIf("spec-repeat")

		Eventually(func() int32 { return atomic.LoadInt32(&n) }, time.Second).Should(BeNumerically(">=", 2))
	})

	It("stops firing once unregistered", func() {
		var n int32
		hk.Reg("spec-stop", func() time.Duration {
			atomic.AddInt32(&n, 1)
			return 10 * time.Millisecond
		}, 10*time.Millisecond)

		Eventually(func() int32 { return atomic.LoadInt32(&n) }, time.Second).Should(BeNumerically(">=", 1))
		hk.UnregIf("spec-stop")
		seen := atomic.LoadInt32(&n)
		Consistently(func() int32 { return atomic.LoadInt32(&n) }, 100*time.Millisecond).Should(Equal(seen))
	})
})
