// Package fname contains filename constants and common system directories
/*
 * Copyright (c) 2018-2022, NVIDIA CORPORATION. All rights reserved.
 */
package fname

const (
	HomeConfigsDir = ".config"
	HomeMpichan    = "mpichan"
)

const (
	// channel defaults config, see config.Load
	GlobalConfig = "mpichan.json"

	// registry of live channels, see registry.Open
	Registry = "mpichan.registry.db"
)
