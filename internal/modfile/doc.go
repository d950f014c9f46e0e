// SPDX-License-Identifier: MPL-2.0

// Package modfile locates and parses tasks-module files into module
// descriptor trees. Two formats are supported: declarative TOML
// (taskmate.toml) and dynamic Lua (taskmate.lua). Either format may
// declare submodules pointing at further taskfiles.
package modfile
