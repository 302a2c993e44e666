package copyright

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "single line is returned as is",
			text: "Copyright (c) 2020 X",
			want: "Copyright (c) 2020 X",
		},
		{
			name: "MIT header",
			text: "The MIT License (MIT)\n\nCopyright (c) 2013 Ben Balter\n\nPermission is hereby granted...\n",
			want: "Copyright (c) 2013 Ben Balter",
		},
		{
			name: "hard-wrapped attribution is joined",
			text: "Copyright (c) 2016 The Project Developers\n   and contributors\n\nPermission...",
			want: "Copyright (c) 2016 The Project Developers and contributors",
		},
		{
			name: "comment markers are stripped",
			text: "// Copyright 2018 Foo Inc.\n// All rights reserved.\n//\n// Redistribution and use...",
			want: "Copyright 2018 Foo Inc. All rights reserved.",
		},
		{
			name: "case insensitive",
			text: "Some header\n\nCOPYRIGHT 1999 BAR\n",
			want: "COPYRIGHT 1999 BAR",
		},
		{
			name: "first match wins",
			text: "Copyright 2001 First\n\nCopyright 2002 Second\n",
			want: "Copyright 2001 First",
		},
		{
			name: "CRLF line endings",
			text: "Title\r\n\r\nCopyright 2010 Windows\r\n\r\nBody\r\n",
			want: "Copyright 2010 Windows",
		},
		{
			name: "blank lines made of whitespace break paragraphs",
			text: "Title\n   \t\nCopyright 2011 Spaces\n",
			want: "Copyright 2011 Spaces",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	first, err := Extract("Title\n\nCopyright (c) 2020\nX\n")
	require.NoError(t, err)

	second, err := Extract(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtract_NoAttribution(t *testing.T) {
	for _, text := range []string{"", "\n\n", "Mozilla Public License Version 2.0\n\n1. Definitions\n"} {
		_, err := Extract(text)
		assert.ErrorIs(t, err, ErrNoAttribution)
	}
}
