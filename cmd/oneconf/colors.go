package main

import (
	"fmt"

	"github.com/fatih/color"
)

type Colors struct {
	Path    func(...any) string
	Insert  func(...any) string
	Delete  func(...any) string
	Replace func(...any) string
	Equal   func(...any) string
}

func NewColors() *Colors {
	mk := func(c *color.Color) func(...any) string {
		c.EnableColor()
		return c.SprintFunc()
	}
	return &Colors{
		Path:    mk(color.RGB(196, 96, 16)),
		Insert:  mk(color.RGB(8, 196, 16)),
		Delete:  mk(color.New(color.FgRed)),
		Replace: mk(color.RGB(198, 198, 46)),
		Equal:   mk(color.RGB(96, 96, 96)),
	}
}

func NoColors() *Colors {
	return &Colors{
		Path:    fmt.Sprint,
		Insert:  fmt.Sprint,
		Delete:  fmt.Sprint,
		Replace: fmt.Sprint,
		Equal:   fmt.Sprint,
	}
}
