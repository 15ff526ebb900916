package code_analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFileTree(t *testing.T) {
	tree := GetFileTree("shop", []string{"main.go", "internal/cart/cart.go", "internal/cart/item.go", "go.mod", "docs/README.md"})

	expected := "shop/\n" +
		"├── docs/\n" +
		"│   └── README.md\n" +
		"├── internal/\n" +
		"│   └── cart/\n" +
		"│       ├── cart.go\n" +
		"│       └── item.go\n" +
		"├── go.mod\n" +
		"└── main.go\n"
	assert.Equal(t, expected, tree)
}

func TestGetFileTree_Empty(t *testing.T) {
	assert.Equal(t, "root/\n", GetFileTree("root", nil))
}
