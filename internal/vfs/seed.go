// SPDX-License-Identifier: MPL-2.0

package vfs

import "fmt"

// DefaultUser is the account name used when none is configured.
const DefaultUser = "user"

// DefaultTree returns a fresh copy of the seed tree for user. The home
// directory is /home/<user>.
func DefaultTree(user string) *Node {
	if user == "" {
		user = DefaultUser
	}

	documents := NewDirectory()
	documents.Children["notes.txt"] = NewFile("This is a sample text file.\nIt contains multiple lines.\nYou can edit it with the \"edit\" command.", false)
	documents.Children["todo.txt"] = NewFile("TODO LIST:\n- Learn more about terminal commands\n- Create a better terminal emulator\n- Have fun!", false)

	home := NewDirectory()
	home.Children["documents"] = documents
	home.Children["downloads"] = NewDirectory()
	home.Children["welcome.txt"] = NewFile("Welcome to the Linux Terminal Emulator!", false)
	home.Children["hello.sh"] = NewFile("#!/bin/bash\necho \"Hello, World!\"", true)

	homes := NewDirectory()
	homes.Children[user] = home

	etc := NewDirectory()
	etc.Children["passwd"] = NewFile(fmt.Sprintf("root:x:0:0:root:/root:/bin/bash\n%s:x:1000:1000:User:/home/%s:/bin/bash", user, user), false)

	usr := NewDirectory()
	usr.Children["bin"] = NewDirectory()

	root := NewDirectory()
	root.Children["home"] = homes
	root.Children["etc"] = etc
	root.Children["bin"] = NewDirectory()
	root.Children["usr"] = usr
	return root
}
